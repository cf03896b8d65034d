package handler

import (
	"net/http"
	"strings"

	"skillswap/internal/app/chat"
	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/req"
	"skillswap/internal/pkg/resp"
)

type chatPage struct {
	Room     string         `json:"room"`
	State    chat.State     `json:"state"`
	Messages []chat.Message `json:"messages"`
}

func chatSnapshot(c *chat.Channel) chatPage {
	return chatPage{
		Room:     c.Room(),
		State:    c.State(),
		Messages: c.Messages(),
	}
}

// HandleChatPage renders the chat preview, opening the channel when the page mounts
// with no live connection.
func HandleChatPage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Chat.State() != chat.StateOpen {
			room := deps.Chat.Room()
			if room == "" {
				room = chat.DefaultRoom
			}
			deps.Chat.Select(r.Context(), room)
		}

		render(w, r, "chat", shellPage(deps, "Chat", chatSnapshot(deps.Chat)))
	}
}

// HandleSelectRoom switches the channel to the submitted room.
func HandleSelectRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, customErr := req.FormValues(w, r, "room")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		room := strings.TrimSpace(input["room"])
		state := deps.Chat.Select(r.Context(), room)
		logx.Debug("Chat room selected", "room", room, "state", string(state))

		if resp.WantsJSON(r) {
			resp.RespondSuccess(w, r, chatSnapshot(deps.Chat))
			return
		}
		seeOther(w, r, "/app/chat")
	}
}

// HandleSendChat sends the submitted text. Sending on a closed channel does nothing.
func HandleSendChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, customErr := req.FormValues(w, r, "text")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		sent := deps.Chat.Send(input["text"])

		if resp.WantsJSON(r) {
			resp.RespondSuccess(w, r, map[string]any{"sent": sent})
			return
		}
		seeOther(w, r, "/app/chat")
	}
}

// HandleChatMessages answers the message log as JSON, for pages that poll it.
func HandleChatMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, chatSnapshot(deps.Chat))
	}
}
