package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PersonRecord is the at-rest representation of a person: the name, phone,
// and password columns hold cipher tokens, never plaintext. The lookup
// column holds a keyed hash of the plaintext name for equality matching.
type PersonRecord struct {
	ID            int
	NameEnc       string
	NameLookup    string
	Age           int
	PhoneEnc      string
	SecurityLevel int
	PasswordEnc   string
	CreatedAt     time.Time
}

// PersonRepository handles persistence for people.
type PersonRepository struct {
	db *sql.DB
}

func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) GetByID(ctx context.Context, id int) (PersonRecord, error) {
	const query = `
		SELECT id, name_enc, name_lookup, age, phone_enc, security_level, password_enc, created_at
		FROM people
		WHERE id = $1`
	var rec PersonRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.NameEnc,
		&rec.NameLookup,
		&rec.Age,
		&rec.PhoneEnc,
		&rec.SecurityLevel,
		&rec.PasswordEnc,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PersonRecord{}, ErrNotFound
		}
		return PersonRecord{}, err
	}
	return rec, nil
}

func (r *PersonRepository) GetByLookup(ctx context.Context, lookup string) (PersonRecord, error) {
	const query = `
		SELECT id, name_enc, name_lookup, age, phone_enc, security_level, password_enc, created_at
		FROM people
		WHERE name_lookup = $1`
	var rec PersonRecord
	err := r.db.QueryRowContext(ctx, query, lookup).Scan(
		&rec.ID,
		&rec.NameEnc,
		&rec.NameLookup,
		&rec.Age,
		&rec.PhoneEnc,
		&rec.SecurityLevel,
		&rec.PasswordEnc,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PersonRecord{}, ErrNotFound
		}
		return PersonRecord{}, err
	}
	return rec, nil
}

func (r *PersonRepository) Create(ctx context.Context, rec PersonRecord) (PersonRecord, error) {
	rec.CreatedAt = time.Now()

	const query = `
		INSERT INTO people (name_enc, name_lookup, age, phone_enc, security_level, password_enc, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		rec.NameEnc,
		rec.NameLookup,
		rec.Age,
		rec.PhoneEnc,
		rec.SecurityLevel,
		rec.PasswordEnc,
		rec.CreatedAt,
	).Scan(&rec.ID); err != nil {
		return PersonRecord{}, err
	}
	return rec, nil
}

// List returns every person, still encrypted. Ordering by plaintext name
// happens above this layer, after decryption.
func (r *PersonRepository) List(ctx context.Context) ([]PersonRecord, error) {
	const query = `
		SELECT id, name_enc, name_lookup, age, phone_enc, security_level, password_enc, created_at
		FROM people
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PersonRecord
	for rows.Next() {
		var rec PersonRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.NameEnc,
			&rec.NameLookup,
			&rec.Age,
			&rec.PhoneEnc,
			&rec.SecurityLevel,
			&rec.PasswordEnc,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
