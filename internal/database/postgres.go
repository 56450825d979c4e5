package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-service/internal/models"
	"chat-service/pkg/logger"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// User Repository Implementation
func (db *PostgresDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.role_id, r.level, u.created_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.RoleID, &user.RoleLevel, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.role_id, r.level, u.created_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.RoleID, &user.RoleLevel, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) ListUsers(ctx context.Context, filter models.MemberFilter) ([]*models.User, int64, error) {
	where := `
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE r.level < $1
		  AND u.id <> $2
		  AND ($3 = '' OR u.username ILIKE '%' || $3 || '%')`

	var total int64
	countQuery := `SELECT COUNT(*)` + where
	if err := db.pool.QueryRow(ctx, countQuery, filter.MaxLevel, filter.ExcludeID, filter.Keyword).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT u.id, u.username, u.email, u.role_id, r.level, u.created_at` + where + `
		ORDER BY u.username
		LIMIT $4 OFFSET $5`

	rows, err := db.pool.Query(ctx, query, filter.MaxLevel, filter.ExcludeID, filter.Keyword, filter.Limit, filter.Skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.RoleID, &user.RoleLevel, &user.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}

// Message Repository Implementation
func (db *PostgresDB) CreateMessage(ctx context.Context, msg *models.Message) (int64, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, room, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id`

	var id int64
	err := db.pool.QueryRow(ctx, query, msg.SenderID, msg.ReceiverID, msg.Room, msg.Content).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (db *PostgresDB) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.room, m.content,
		       su.username, COALESCE(ru.username, ''),
		       m.created_at, m.updated_at
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		LEFT JOIN users ru ON ru.id = m.receiver_id
		WHERE m.id = $1`

	msg := &models.Message{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Room, &msg.Content,
		&msg.SenderName, &msg.ReceiverName,
		&msg.CreatedAt, &msg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return msg, nil
}

func (db *PostgresDB) FindMessages(ctx context.Context, filter models.MessageFilter) ([]*models.Message, int64, error) {
	where := `
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		LEFT JOIN users ru ON ru.id = m.receiver_id
		WHERE m.room = $1
		  AND ($2 = '' OR m.content ILIKE '%' || $2 || '%')`

	var total int64
	countQuery := `SELECT COUNT(*)` + where
	if err := db.pool.QueryRow(ctx, countQuery, filter.Room, filter.Keyword).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.room, m.content,
		       su.username, COALESCE(ru.username, ''),
		       m.created_at, m.updated_at` + where + `
		ORDER BY m.id DESC
		LIMIT $3 OFFSET $4`

	rows, err := db.pool.Query(ctx, query, filter.Room, filter.Keyword, filter.Limit, filter.Skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		if err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Room, &msg.Content,
			&msg.SenderName, &msg.ReceiverName,
			&msg.CreatedAt, &msg.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		messages = append(messages, msg)
	}

	return messages, total, rows.Err()
}
