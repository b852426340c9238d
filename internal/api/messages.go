package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"confroom-backend/internal/database"
	"confroom-backend/internal/events"
	"confroom-backend/internal/stats"
	"confroom-backend/internal/types"
)

type SendMessageRequest struct {
	RoomId          string `json:"room_id"`
	Text            string `json:"text"`
	ParentMessageId int    `json:"parent_message_id,omitempty"`
}

type EditMessageRequest struct {
	MessageId int    `json:"message_id"`
	Text      string `json:"text"`
}

type ReactionRequest struct {
	MessageId int    `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type MarkSeenRequest struct {
	RoomId    string `json:"room_id"`
	MessageId int    `json:"message_id"`
}

func (s *ConfRoomApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.RoomId == "" || req.Text == "" {
		errResp := NewValidationError("room_id and text are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomByExternalId(req.RoomId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !room.IsActive {
		errResp := NewValidationError("room is not active")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := database.CreateMessageParams{
		RoomId: room.Id,
		UserId: user.Id,
		Text:   req.Text,
	}

	// replies are single level: a reply to a reply attaches to the same parent
	if req.ParentMessageId != 0 {
		parent, err := s.db.GetMessageById(req.ParentMessageId)
		if err != nil {
			var errResp *ApiError
			if errors.Is(err, sql.ErrNoRows) {
				errResp = NewNotFoundError()
			} else {
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		if parent.RoomId != room.Id {
			errResp := NewValidationError("parent message belongs to another room")
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		parentId := int64(parent.Id)
		if parent.ParentMessageId.Valid {
			parentId = parent.ParentMessageId.Int64
		}
		params.ParentMessageId = sql.NullInt64{Int64: parentId, Valid: true}
	}

	msg, err := s.db.CreateMessage(params)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.MessagesSent)

	view := types.Message{
		Id:        msg.Id,
		RoomId:    msg.RoomId,
		UserId:    msg.UserId,
		Author:    summaryOf(user),
		Text:      msg.Text,
		Reactions: []types.Reaction{},
		Timestamp: msg.CreatedAt,
	}
	if msg.ParentMessageId.Valid {
		view.ParentMessageId = int(msg.ParentMessageId.Int64)
	}

	s.hub.Broadcast(events.NewMessageEvent(room.ExternalId, &view))

	s.writeJson(w, http.StatusCreated, view)
}

// editMessage rewrites a message's text. Only the author may edit, and only
// within the edit window after the message was sent.
func (s *ConfRoomApp) editMessage(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.MessageId == 0 || req.Text == "" {
		errResp := NewValidationError("message_id and text are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.db.GetMessageById(req.MessageId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if msg.UserId != user.Id {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if s.now().Sub(msg.CreatedAt) >= s.cfg.EditWindow {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.UpdateMessageText(msg.Id, req.Text)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomDetails(updated.RoomId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	view := types.Message{
		Id:        updated.Id,
		RoomId:    updated.RoomId,
		UserId:    updated.UserId,
		Author:    summaryOf(user),
		Text:      updated.Text,
		IsEdited:  updated.IsEdited,
		Reactions: []types.Reaction{},
		Timestamp: updated.CreatedAt,
	}
	if updated.ParentMessageId.Valid {
		view.ParentMessageId = int(updated.ParentMessageId.Int64)
	}

	s.hub.Broadcast(events.MessageEditedEvent(room.ExternalId, &view))

	s.writeJson(w, http.StatusOK, view)
}

// deleteMessage removes a message and its reactions. The author may delete
// their own messages, admins may delete anyone's.
func (s *ConfRoomApp) deleteMessage(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messageId, err := strconv.Atoi(r.URL.Query().Get("message_id"))
	if err != nil || messageId == 0 {
		errResp := NewValidationError("message_id is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.db.GetMessageById(messageId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if msg.UserId != user.Id && !user.IsAdmin() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteMessage(msg.Id); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.MessagesDeleted)

	room, err := s.db.GetRoomDetails(msg.RoomId)
	if err == nil {
		s.hub.Broadcast(events.MessageDeletedEvent(room.ExternalId, msg.Id))
	}

	w.WriteHeader(http.StatusNoContent)
}

// getRoomMessages returns the latest page of a room's messages in
// chronological order, denormalized with authors, parent previews and
// reactions.
func (s *ConfRoomApp) getRoomMessages(w http.ResponseWriter, r *http.Request) {
	if _, errResp := s.currentUser(r); errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, errResp := s.resolveRoom(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.ListRoomMessages(room.Id, s.cfg.MessagePageSize)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messageIds := make([]int, 0, len(messages))
	for _, md := range messages {
		messageIds = append(messageIds, md.Id)
	}

	var reactions []database.ReactionUser
	if len(messageIds) > 0 {
		reactions, err = s.db.ListReactions(messageIds)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	byMessage := make(map[int][]database.ReactionUser, len(messageIds))
	for _, ru := range reactions {
		byMessage[ru.MessageId] = append(byMessage[ru.MessageId], ru)
	}

	views := make([]types.Message, 0, len(messages))
	for _, md := range messages {
		views = append(views, messageView(md, byMessage[md.Id]))
	}

	s.writeJson(w, http.StatusOK, views)
}

// toggleReaction adds the caller's reaction, or removes it when the same
// emoji from the same caller is already present.
func (s *ConfRoomApp) toggleReaction(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.MessageId == 0 || req.Emoji == "" {
		errResp := NewValidationError("message_id and emoji are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.db.GetMessageById(req.MessageId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	added, err := s.db.ToggleReaction(msg.Id, user.Id, req.Emoji)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.ReactionsToggled)

	room, err := s.db.GetRoomDetails(msg.RoomId)
	if err == nil {
		s.hub.Broadcast(events.ReactionEvent(room.ExternalId, &events.ReactionChange{
			MessageId: msg.Id,
			Emoji:     req.Emoji,
			Added:     added,
			User:      summaryOf(user),
		}))
	}

	s.writeJson(w, http.StatusOK, map[string]any{
		"message_id": msg.Id,
		"emoji":      req.Emoji,
		"added":      added,
	})
}

func (s *ConfRoomApp) getRoomParticipants(w http.ResponseWriter, r *http.Request) {
	if _, errResp := s.currentUser(r); errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, errResp := s.resolveRoom(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	participants, err := s.db.ListParticipants(room.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	views := make([]types.Participant, 0, len(participants))
	for _, pu := range participants {
		views = append(views, participantView(pu))
	}

	s.writeJson(w, http.StatusOK, views)
}

// markAsSeen advances the caller's read receipt for a room.
func (s *ConfRoomApp) markAsSeen(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req MarkSeenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.RoomId == "" || req.MessageId == 0 {
		errResp := NewValidationError("room_id and message_id are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomByExternalId(req.RoomId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.SetLastSeenMessage(room.Id, user.Id, req.MessageId); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
