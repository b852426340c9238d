package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"confroom-backend/internal/database"
	"confroom-backend/internal/events"
	"confroom-backend/internal/stats"
	"confroom-backend/internal/types"
)

type CreateRoomRequest struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

type RoomRequest struct {
	RoomId string `json:"room_id"`
}

func (s *ConfRoomApp) createRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Title == "" {
		errResp := NewValidationError("title is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomType := req.Type
	if roomType == "" {
		roomType = database.RoomTypeFree
	}
	if roomType != database.RoomTypeFree && roomType != database.RoomTypePremium {
		errResp := NewValidationError("unknown room type")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if roomType == database.RoomTypePremium && !user.IsPremium && !user.IsAdmin() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	externalId, err := s.generateShortId()
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.CreateRoom(database.CreateRoomParams{
		Title:           req.Title,
		Type:            roomType,
		OwnerId:         user.Id,
		ExternalId:      externalId,
		MaxParticipants: s.cfg.RoomCapacity(roomType),
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.RoomsCreated)

	details, err := s.db.GetRoomDetails(room.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, roomView(details))
}

// resolveRoom looks up a room by its external id from the query string.
func (s *ConfRoomApp) resolveRoom(r *http.Request) (database.Room, *ApiError) {
	externalId := r.URL.Query().Get("room_id")
	if externalId == "" {
		return database.Room{}, NewValidationError("room_id is required")
	}

	room, err := s.db.GetRoomByExternalId(externalId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.Room{}, NewNotFoundError()
		}
		return database.Room{}, NewInternalServerError(err)
	}

	return room, nil
}

func (s *ConfRoomApp) getRoom(w http.ResponseWriter, r *http.Request) {
	if _, errResp := s.currentUser(r); errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, errResp := s.resolveRoom(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	details, err := s.db.GetRoomDetails(room.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, roomView(details))
}

func (s *ConfRoomApp) listActiveRooms(w http.ResponseWriter, r *http.Request) {
	if _, errResp := s.currentUser(r); errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rooms, err := s.db.ListRooms(true)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, roomViews(rooms))
}

// listAllRooms includes closed rooms and is restricted to admins.
func (s *ConfRoomApp) listAllRooms(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !user.IsAdmin() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rooms, err := s.db.ListRooms(false)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, roomViews(rooms))
}

// joinRoom records the caller as an active participant. Joining a room the
// caller is already in refreshes their existing row instead of adding one.
func (s *ConfRoomApp) joinRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.RoomId == "" {
		errResp := NewValidationError("room_id is required")
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

	if _, err := s.db.UpsertParticipant(room.Id, user.Id); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.hub.Broadcast(events.PresenceEvent(room.ExternalId, summaryOf(user), true))

	details, err := s.db.GetRoomDetails(room.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, roomView(details))
}

// leaveRoom deactivates the caller's participant row. Leaving a room the
// caller never joined is a no-op.
func (s *ConfRoomApp) leaveRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.RoomId == "" {
		errResp := NewValidationError("room_id is required")
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

	if err := s.db.DeactivateParticipant(room.Id, user.Id); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.hub.Broadcast(events.PresenceEvent(room.ExternalId, summaryOf(user), false))

	w.WriteHeader(http.StatusNoContent)
}

// toggleRoomStatus flips a room between active and closed. Only the owner or
// an admin may do so.
func (s *ConfRoomApp) toggleRoomStatus(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.RoomId == "" {
		errResp := NewValidationError("room_id is required")
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

	if room.OwnerId != user.Id && !user.IsAdmin() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	isActive, err := s.db.ToggleRoomStatus(room.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !isActive {
		s.hub.CloseRoom(room.ExternalId)
	}

	s.writeJson(w, http.StatusOK, map[string]any{"room_id": room.ExternalId, "is_active": isActive})
}

// deleteRoom removes the room and everything in it: messages, reactions and
// the participation ledger go with it atomically.
func (s *ConfRoomApp) deleteRoom(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, errResp := s.resolveRoom(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if room.OwnerId != user.Id && !user.IsAdmin() {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteRoom(room.Id); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.stats.Incr(stats.RoomsDeleted)
	s.hub.CloseRoom(room.ExternalId)

	w.WriteHeader(http.StatusNoContent)
}

func roomViews(rooms []database.RoomDetails) []types.Room {
	views := make([]types.Room, 0, len(rooms))
	for _, rd := range rooms {
		views = append(views, roomView(rd))
	}

	return views
}
