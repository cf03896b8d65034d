package backend

// Mentor is one match result.
type Mentor struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	SkillsTeach []string `json:"skills_teach"`
	Overlap     []string `json:"overlap"`
}

// NewProfile is the body of POST /users.
type NewProfile struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	SkillsTeach []string `json:"skills_teach"`
	SkillsLearn []string `json:"skills_learn"`
}

// Transaction is one token ledger entry shown on the dashboard.
type Transaction struct {
	ID     string `json:"_id"`
	Reason string `json:"reason"`
	Delta  int    `json:"delta"`
}

// Session is a learning session between a teacher and a learner.
type Session struct {
	ID        string `json:"_id"`
	Skill     string `json:"skill"`
	Status    string `json:"status"`
	TeacherID string `json:"teacher_id"`
	LearnerID string `json:"learner_id"`
}

// Dashboard is the payload of GET /dashboard/{id}.
type Dashboard struct {
	Tokens       int           `json:"tokens"`
	Transactions []Transaction `json:"transactions"`
	Upcoming     []Session     `json:"upcoming"`
	Completed    []Session     `json:"completed"`
}

// AdminUser is one row of GET /admin/users.
type AdminUser struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// EmptyDashboard is the zero-balance, no-activity dashboard shown when loading fails.
func EmptyDashboard() Dashboard {
	return Dashboard{
		Transactions: []Transaction{},
		Upcoming:     []Session{},
		Completed:    []Session{},
	}
}

func (d Dashboard) normalized() Dashboard {
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
	if d.Upcoming == nil {
		d.Upcoming = []Session{}
	}
	if d.Completed == nil {
		d.Completed = []Session{}
	}
	return d
}

func (m Mentor) normalized() Mentor {
	if m.SkillsTeach == nil {
		m.SkillsTeach = []string{}
	}
	if m.Overlap == nil {
		m.Overlap = []string{}
	}
	return m
}
