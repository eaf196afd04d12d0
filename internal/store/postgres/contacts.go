package postgres

import (
	"context"
	"fmt"

	"softwareprosweb/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactsStore struct {
	pool *pgxpool.Pool
}

func NewContactsStore(pool *pgxpool.Pool) *ContactsStore {
	return &ContactsStore{pool: pool}
}

func (s *ContactsStore) CreateMessage(ctx context.Context, m domain.ContactMessage) (domain.ContactMessage, error) {
	const q = `
		INSERT INTO contact_messages (id, name, email, company, message, client_ip)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := s.pool.QueryRow(ctx, q, m.ID, m.Name, m.Email, m.Company, m.Message, nullIfEmpty(m.ClientIP)).
		Scan(&m.CreatedAt)
	if err != nil {
		return domain.ContactMessage{}, fmt.Errorf("create contact message: %w", err)
	}
	return m, nil
}

func (s *ContactsStore) ListMessages(ctx context.Context, limit, offset int) ([]domain.ContactMessage, error) {
	const q = `
		SELECT id, name, email, company, message, client_ip, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.ContactMessage
	for rows.Next() {
		var (
			m      domain.ContactMessage
			idUUID pgtype.UUID
			ipText pgtype.Text
		)
		if err := rows.Scan(&idUUID, &m.Name, &m.Email, &m.Company, &m.Message, &ipText, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("list contact messages: %w", err)
		}
		m.ID = uuidOrEmpty(idUUID)
		m.ClientIP = textOrEmpty(ipText)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return msgs, nil
}
