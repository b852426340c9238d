package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	userColumns = "id, email, name, display_name, password_hash, role, is_premium, premium_expires_at, " +
		"is_guest, guest_token, verification_code_hash, verification_expires_at, email_verified_at, created_at, updated_at"
	roomColumns    = "id, external_id, title, type, owner_id, is_active, max_participants, created_at, updated_at"
	messageColumns = "id, room_id, user_id, text, parent_message_id, is_edited, created_at"
)

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.Id,
		&u.EmailAddress,
		&u.Name,
		&u.DisplayName,
		&u.PasswordHash,
		&u.Role,
		&u.IsPremium,
		&u.PremiumExpiresAt,
		&u.IsGuest,
		&u.GuestToken,
		&u.VerificationCodeHash,
		&u.VerificationExpiresAt,
		&u.EmailVerifiedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func scanRoom(row *sql.Row) (Room, error) {
	var r Room
	err := row.Scan(
		&r.Id,
		&r.ExternalId,
		&r.Title,
		&r.Type,
		&r.OwnerId,
		&r.IsActive,
		&r.MaxParticipants,
		&r.CreatedAt,
		&r.UpdatedAt,
	)

	return r, err
}

func scanMessage(row *sql.Row) (Message, error) {
	var m Message
	err := row.Scan(
		&m.Id,
		&m.RoomId,
		&m.UserId,
		&m.Text,
		&m.ParentMessageId,
		&m.IsEdited,
		&m.CreatedAt,
	)

	return m, err
}

func (db *PgConfRoomRepository) CreateAccount(params CreateAccountParams) (User, error) {
	row := db.conn.QueryRow(
		"INSERT INTO accounts (email, name, password_hash, is_guest, guest_token, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING "+userColumns,
		params.EmailAddress,
		params.Name,
		params.PasswordHash,
		params.IsGuest,
		params.GuestToken,
		time.Now().UTC(),
	)

	return scanUser(row)
}

func (db *PgConfRoomRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT "+userColumns+" FROM accounts WHERE id = $1 LIMIT 1",
		accountId,
	)

	return scanUser(row)
}

func (db *PgConfRoomRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT "+userColumns+" FROM accounts WHERE email = $1 LIMIT 1",
		email,
	)

	return scanUser(row)
}

// UpdateProfile overwrites both profile fields. Empty values clear them,
// callers pass the current value to preserve a field.
func (db *PgConfRoomRepository) UpdateProfile(params UpdateProfileParams) (User, error) {
	row := db.conn.QueryRow(
		"UPDATE accounts SET display_name = $2, name = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING "+userColumns,
		params.UserId,
		params.DisplayName,
		params.Name,
		time.Now().UTC(),
	)

	return scanUser(row)
}

func (db *PgConfRoomRepository) SetRole(accountId int, role string) error {
	res, err := db.conn.Exec(
		"UPDATE accounts SET role = $2, updated_at = $3 WHERE id = $1",
		accountId,
		role,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgConfRoomRepository) SetPremium(accountId int, expiresAt time.Time) (User, error) {
	row := db.conn.QueryRow(
		"UPDATE accounts SET is_premium = TRUE, premium_expires_at = $2, updated_at = $3 "+
			"WHERE id = $1 RETURNING "+userColumns,
		accountId,
		expiresAt,
		time.Now().UTC(),
	)

	return scanUser(row)
}

// ExpirePremium demotes up to limit accounts whose premium entitlement
// lapsed before now. It returns the number of accounts demoted.
func (db *PgConfRoomRepository) ExpirePremium(now time.Time, limit int) (int, error) {
	res, err := db.conn.Exec(
		"UPDATE accounts SET is_premium = FALSE, premium_expires_at = NULL, updated_at = $1 "+
			"WHERE id IN (SELECT id FROM accounts WHERE is_premium AND premium_expires_at < $1 "+
			"ORDER BY premium_expires_at LIMIT $2)",
		now,
		limit,
	)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}

func (db *PgConfRoomRepository) SaveVerificationCode(accountId int, codeHash string, expiresAt time.Time) error {
	_, err := db.conn.Exec(
		"UPDATE accounts SET verification_code_hash = $2, verification_expires_at = $3, updated_at = $4 "+
			"WHERE id = $1",
		accountId,
		codeHash,
		expiresAt,
		time.Now().UTC(),
	)

	return err
}

// ConsumeVerificationCode marks the account's email verified and clears the
// stored code. It returns sql.ErrNoRows when no unexpired code exists.
func (db *PgConfRoomRepository) ConsumeVerificationCode(accountId int, now time.Time) (User, error) {
	row := db.conn.QueryRow(
		"UPDATE accounts SET email_verified_at = $2, verification_code_hash = '', "+
			"verification_expires_at = NULL, updated_at = $2 "+
			"WHERE id = $1 AND verification_expires_at > $2 RETURNING "+userColumns,
		accountId,
		now,
	)

	return scanUser(row)
}

func (db *PgConfRoomRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	row := db.conn.QueryRow(
		"INSERT INTO rooms (external_id, title, type, owner_id, is_active, max_participants, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, TRUE, $5, $6, $6) RETURNING "+roomColumns,
		params.ExternalId,
		params.Title,
		params.Type,
		params.OwnerId,
		params.MaxParticipants,
		time.Now().UTC(),
	)

	return scanRoom(row)
}

func (db *PgConfRoomRepository) GetRoomByExternalId(externalId string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT "+roomColumns+" FROM rooms WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	return scanRoom(row)
}

const roomDetailsQuery = `
SELECT
		r.id, r.external_id, r.title, r.type, r.owner_id, r.is_active,
		r.max_participants, r.created_at, r.updated_at,
		a.name, a.display_name,
		(SELECT count(*) FROM participants p WHERE p.room_id = r.id AND p.is_active) AS participant_count
FROM rooms r
JOIN accounts a ON r.owner_id = a.id
`

func scanRoomDetails(rows *sql.Rows) (RoomDetails, error) {
	var rd RoomDetails
	err := rows.Scan(
		&rd.Id,
		&rd.ExternalId,
		&rd.Title,
		&rd.Type,
		&rd.OwnerId,
		&rd.IsActive,
		&rd.MaxParticipants,
		&rd.CreatedAt,
		&rd.UpdatedAt,
		&rd.OwnerName,
		&rd.OwnerDisplayName,
		&rd.ParticipantCount,
	)

	return rd, err
}

func (db *PgConfRoomRepository) GetRoomDetails(roomId int) (RoomDetails, error) {
	rows, err := db.conn.Query(roomDetailsQuery+"WHERE r.id = $1 LIMIT 1", roomId)
	if err != nil {
		return RoomDetails{}, fmt.Errorf("fetch room details: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return RoomDetails{}, err
		}
		return RoomDetails{}, sql.ErrNoRows
	}

	return scanRoomDetails(rows)
}

func (db *PgConfRoomRepository) ListRooms(activeOnly bool) ([]RoomDetails, error) {
	query := roomDetailsQuery
	if activeOnly {
		query += "WHERE r.is_active "
	}
	query += "ORDER BY r.created_at DESC"

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms = make([]RoomDetails, 0)
	for rows.Next() {
		rd, err := scanRoomDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}

		rooms = append(rooms, rd)
	}

	return rooms, rows.Err()
}

func (db *PgConfRoomRepository) ToggleRoomStatus(roomId int) (bool, error) {
	row := db.conn.QueryRow(
		"UPDATE rooms SET is_active = NOT is_active, updated_at = $2 WHERE id = $1 RETURNING is_active",
		roomId,
		time.Now().UTC(),
	)

	var isActive bool
	err := row.Scan(&isActive)

	return isActive, err
}

// DeleteRoom removes the room and every participant, message and reaction
// scoped to it in a single transaction.
func (db *PgConfRoomRepository) DeleteRoom(roomId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec("DELETE FROM reactions WHERE message_id IN (SELECT id FROM messages WHERE room_id = $1)", roomId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM messages WHERE room_id = $1", roomId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM participants WHERE room_id = $1", roomId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM rooms WHERE id = $1", roomId)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// UpsertParticipant inserts a participant row for (room, account) or, when
// one exists, reactivates it and refreshes joined_at. The unique index on
// (room_id, user_id) makes concurrent joins safe.
func (db *PgConfRoomRepository) UpsertParticipant(roomId, accountId int) (Participant, error) {
	row := db.conn.QueryRow(
		"INSERT INTO participants (room_id, user_id, joined_at, is_active) VALUES ($1, $2, $3, TRUE) "+
			"ON CONFLICT (room_id, user_id) DO UPDATE SET is_active = TRUE, joined_at = EXCLUDED.joined_at "+
			"RETURNING id, room_id, user_id, joined_at, is_active, last_seen_message_id",
		roomId,
		accountId,
		time.Now().UTC(),
	)

	var p Participant
	err := row.Scan(
		&p.Id,
		&p.RoomId,
		&p.UserId,
		&p.JoinedAt,
		&p.IsActive,
		&p.LastSeenMessageId,
	)

	return p, err
}

func (db *PgConfRoomRepository) DeactivateParticipant(roomId, accountId int) error {
	_, err := db.conn.Exec(
		"UPDATE participants SET is_active = FALSE WHERE room_id = $1 AND user_id = $2",
		roomId,
		accountId,
	)

	return err
}

func (db *PgConfRoomRepository) ListParticipants(roomId int) ([]ParticipantUser, error) {
	rows, err := db.conn.Query(
		"SELECT p.id, p.room_id, p.user_id, p.joined_at, p.is_active, p.last_seen_message_id, "+
			"a.name, a.display_name, a.is_premium, a.is_guest "+
			"FROM participants p JOIN accounts a ON p.user_id = a.id "+
			"WHERE p.room_id = $1 AND p.is_active ORDER BY p.joined_at",
		roomId,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants = make([]ParticipantUser, 0)
	for rows.Next() {
		var pu ParticipantUser
		err := rows.Scan(
			&pu.Id,
			&pu.RoomId,
			&pu.UserId,
			&pu.JoinedAt,
			&pu.IsActive,
			&pu.LastSeenMessageId,
			&pu.Name,
			&pu.DisplayName,
			&pu.IsPremium,
			&pu.IsGuest,
		)
		if err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}

		participants = append(participants, pu)
	}

	return participants, rows.Err()
}

func (db *PgConfRoomRepository) SetLastSeenMessage(roomId, accountId, messageId int) error {
	_, err := db.conn.Exec(
		"UPDATE participants SET last_seen_message_id = $3 WHERE room_id = $1 AND user_id = $2",
		roomId,
		accountId,
		messageId,
	)

	return err
}

func (db *PgConfRoomRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	row := db.conn.QueryRow(
		"INSERT INTO messages (room_id, user_id, text, parent_message_id, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING "+messageColumns,
		params.RoomId,
		params.UserId,
		params.Text,
		params.ParentMessageId,
		time.Now().UTC(),
	)

	return scanMessage(row)
}

func (db *PgConfRoomRepository) GetMessageById(messageId int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT "+messageColumns+" FROM messages WHERE id = $1 LIMIT 1",
		messageId,
	)

	return scanMessage(row)
}

func (db *PgConfRoomRepository) UpdateMessageText(messageId int, text string) (Message, error) {
	row := db.conn.QueryRow(
		"UPDATE messages SET text = $2, is_edited = TRUE WHERE id = $1 RETURNING "+messageColumns,
		messageId,
		text,
	)

	return scanMessage(row)
}

func (db *PgConfRoomRepository) DeleteMessage(messageId int) error {
	res, err := db.conn.Exec("DELETE FROM messages WHERE id = $1", messageId)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListRoomMessages returns the most recent limit messages in ascending
// timestamp order, each joined with its author and, when present, a preview
// of the parent message. Deleted parents scan as NULL.
func (db *PgConfRoomRepository) ListRoomMessages(roomId, limit int) ([]MessageDetails, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
SELECT id, room_id, user_id, text, parent_message_id, is_edited, created_at,
		author_name, author_display_name, author_is_premium, author_role,
		parent_text, parent_author_name, parent_author_display_name
FROM (
	SELECT m.id, m.room_id, m.user_id, m.text, m.parent_message_id, m.is_edited, m.created_at,
			a.name AS author_name, a.display_name AS author_display_name,
			a.is_premium AS author_is_premium, a.role AS author_role,
			pm.text AS parent_text, pa.name AS parent_author_name,
			pa.display_name AS parent_author_display_name
	FROM messages m
	JOIN accounts a ON m.user_id = a.id
	LEFT JOIN messages pm ON m.parent_message_id = pm.id
	LEFT JOIN accounts pa ON pm.user_id = pa.id
	WHERE m.room_id = $1
	ORDER BY m.created_at DESC, m.id DESC
	LIMIT $2
) latest
ORDER BY created_at, id
`

	rows, err := db.conn.Query(query, roomId, limit)
	if err != nil {
		return nil, fmt.Errorf("list room messages: %w", err)
	}
	defer rows.Close()

	var messages = make([]MessageDetails, 0, limit)
	for rows.Next() {
		var md MessageDetails
		err := rows.Scan(
			&md.Id,
			&md.RoomId,
			&md.UserId,
			&md.Text,
			&md.ParentMessageId,
			&md.IsEdited,
			&md.CreatedAt,
			&md.AuthorName,
			&md.AuthorDisplayName,
			&md.AuthorIsPremium,
			&md.AuthorRole,
			&md.ParentText,
			&md.ParentAuthorName,
			&md.ParentAuthorDisplayName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}

		messages = append(messages, md)
	}

	return messages, rows.Err()
}

func (db *PgConfRoomRepository) ListReactions(messageIds []int) ([]ReactionUser, error) {
	if len(messageIds) == 0 {
		return []ReactionUser{}, nil
	}

	rows, err := db.conn.Query(
		"SELECT r.id, r.message_id, r.user_id, r.emoji, r.created_at, a.name, a.display_name "+
			"FROM reactions r JOIN accounts a ON r.user_id = a.id "+
			"WHERE r.message_id = ANY($1) ORDER BY r.created_at, r.id",
		pq.Array(messageIds),
	)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	var reactions = make([]ReactionUser, 0)
	for rows.Next() {
		var ru ReactionUser
		err := rows.Scan(
			&ru.Id,
			&ru.MessageId,
			&ru.UserId,
			&ru.Emoji,
			&ru.CreatedAt,
			&ru.Name,
			&ru.DisplayName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reaction row: %w", err)
		}

		reactions = append(reactions, ru)
	}

	return reactions, rows.Err()
}

// ToggleReaction removes the (account, emoji) reaction when present,
// otherwise adds it. It reports whether the reaction is present afterwards.
// The unique index on (message_id, user_id, emoji) keeps concurrent toggles
// from duplicating rows.
func (db *PgConfRoomRepository) ToggleReaction(messageId, accountId int, emoji string) (bool, error) {
	res, err := db.conn.Exec(
		"DELETE FROM reactions WHERE message_id = $1 AND user_id = $2 AND emoji = $3",
		messageId,
		accountId,
		emoji,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	_, err = db.conn.Exec(
		"INSERT INTO reactions (message_id, user_id, emoji, created_at) VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (message_id, user_id, emoji) DO NOTHING",
		messageId,
		accountId,
		emoji,
		time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}

	return true, nil
}

// DeleteMessagesBefore removes up to limit messages created before cutoff.
// It returns the number deleted so callers can tell whether a full batch was
// hit and more remain for the next run.
func (db *PgConfRoomRepository) DeleteMessagesBefore(cutoff time.Time, limit int) (int, error) {
	res, err := db.conn.Exec(
		"DELETE FROM messages WHERE id IN "+
			"(SELECT id FROM messages WHERE created_at < $1 ORDER BY created_at LIMIT $2)",
		cutoff,
		limit,
	)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}
