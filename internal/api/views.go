package api

import (
	"confroom-backend/internal/database"
	"confroom-backend/internal/types"
)

func userView(u database.User) types.User {
	view := types.User{
		Id:           u.Id,
		EmailAddress: u.EmailAddress,
		Name:         u.Name,
		DisplayName:  u.DisplayName,
		Role:         u.Role,
		IsPremium:    u.IsPremium,
		IsGuest:      u.IsGuest,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}

	if u.PremiumExpiresAt.Valid {
		t := u.PremiumExpiresAt.Time
		view.PremiumExpiresAt = &t
	}

	return view
}

func roomView(rd database.RoomDetails) types.Room {
	return types.Room{
		Id:         rd.Id,
		ExternalId: rd.ExternalId,
		Title:      rd.Title,
		Type:       rd.Type,
		OwnerId:    rd.OwnerId,
		Owner: &types.UserSummary{
			Id:          rd.OwnerId,
			Name:        rd.OwnerName,
			DisplayName: rd.OwnerDisplayName,
		},
		IsActive:         rd.IsActive,
		MaxParticipants:  rd.MaxParticipants,
		ParticipantCount: rd.ParticipantCount,
		CreatedAt:        rd.CreatedAt,
		UpdatedAt:        rd.UpdatedAt,
	}
}

func participantView(pu database.ParticipantUser) types.Participant {
	view := types.Participant{
		Id:     pu.Id,
		RoomId: pu.RoomId,
		UserId: pu.UserId,
		User: types.UserSummary{
			Id:          pu.UserId,
			Name:        pu.Name,
			DisplayName: pu.DisplayName,
			IsPremium:   pu.IsPremium,
			IsGuest:     pu.IsGuest,
		},
		JoinedAt: pu.JoinedAt,
		IsActive: pu.IsActive,
	}

	if pu.LastSeenMessageId.Valid {
		view.LastSeenMessageId = int(pu.LastSeenMessageId.Int64)
	}

	return view
}

// messageView assembles the denormalized message shape: author summary, the
// parent preview when the parent still exists, and expanded reactions.
func messageView(md database.MessageDetails, reactions []database.ReactionUser) types.Message {
	view := types.Message{
		Id:     md.Id,
		RoomId: md.RoomId,
		UserId: md.UserId,
		Author: types.UserSummary{
			Id:          md.UserId,
			Name:        md.AuthorName,
			DisplayName: md.AuthorDisplayName,
			IsPremium:   md.AuthorIsPremium,
			Role:        md.AuthorRole,
		},
		Text:      md.Text,
		IsEdited:  md.IsEdited,
		Reactions: make([]types.Reaction, 0, len(reactions)),
		Timestamp: md.CreatedAt,
	}

	if md.ParentMessageId.Valid {
		view.ParentMessageId = int(md.ParentMessageId.Int64)
		// a deleted parent scans as NULL text and yields no preview
		if md.ParentText.Valid {
			view.Parent = &types.ParentPreview{
				Id:   view.ParentMessageId,
				Text: md.ParentText.String,
				Author: types.UserSummary{
					Name:        md.ParentAuthorName.String,
					DisplayName: md.ParentAuthorDisplayName.String,
				},
			}
		}
	}

	for _, ru := range reactions {
		view.Reactions = append(view.Reactions, types.Reaction{
			Emoji: ru.Emoji,
			User: types.UserSummary{
				Id:          ru.UserId,
				Name:        ru.Name,
				DisplayName: ru.DisplayName,
			},
		})
	}

	return view
}

func summaryOf(u database.User) types.UserSummary {
	return types.UserSummary{
		Id:          u.Id,
		Name:        u.Name,
		DisplayName: u.DisplayName,
		IsPremium:   u.IsPremium,
		IsGuest:     u.IsGuest,
		Role:        u.Role,
	}
}
