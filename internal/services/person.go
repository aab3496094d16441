package services

import (
	"context"
	"errors"
	"sort"

	"github.com/baking-contest/webapp/internal/fieldcrypt"
	"github.com/baking-contest/webapp/internal/store"
	"github.com/baking-contest/webapp/types"
)

// ErrDuplicateName is returned when a person with the same name already
// exists.
var ErrDuplicateName = errors.New("name already registered")

// ErrInvalidCredentials is the single failure returned for every
// authentication miss. Callers must not distinguish an unknown name from a
// wrong password.
var ErrInvalidCredentials = errors.New("invalid username and/or password")

// PersonRepository defines persistence operations for people.
type PersonRepository interface {
	GetByID(ctx context.Context, id int) (store.PersonRecord, error)
	GetByLookup(ctx context.Context, lookup string) (store.PersonRecord, error)
	Create(ctx context.Context, rec store.PersonRecord) (store.PersonRecord, error)
	List(ctx context.Context) ([]store.PersonRecord, error)
}

// PersonService encapsulates person use-cases. It is the encryption
// boundary: repositories below it only ever see cipher tokens, callers above
// it only ever see plaintext.
type PersonService struct {
	repo   PersonRepository
	cipher *fieldcrypt.Cipher
}

func NewPersonService(repo PersonRepository, cipher *fieldcrypt.Cipher) *PersonService {
	return &PersonService{repo: repo, cipher: cipher}
}

// Create encrypts the sensitive fields and persists one person. The caller
// is responsible for field validation; age and security level are stored as
// plain integers.
func (s *PersonService) Create(ctx context.Context, person types.Person) (types.Person, error) {
	lookup := s.cipher.LookupHash(person.Name)

	if _, err := s.repo.GetByLookup(ctx, lookup); err == nil {
		return types.Person{}, ErrDuplicateName
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Person{}, err
	}

	nameEnc, err := s.cipher.Encrypt(person.Name)
	if err != nil {
		return types.Person{}, err
	}
	phoneEnc, err := s.cipher.Encrypt(person.Phone)
	if err != nil {
		return types.Person{}, err
	}
	passwordEnc, err := s.cipher.Encrypt(person.Password)
	if err != nil {
		return types.Person{}, err
	}

	created, err := s.repo.Create(ctx, store.PersonRecord{
		NameEnc:       nameEnc,
		NameLookup:    lookup,
		Age:           person.Age,
		PhoneEnc:      phoneEnc,
		SecurityLevel: person.SecurityLevel,
		PasswordEnc:   passwordEnc,
	})
	if err != nil {
		return types.Person{}, err
	}

	person.ID = created.ID
	person.CreatedAt = created.CreatedAt
	return person, nil
}

// Authenticate verifies a name/password pair and returns the matching
// person. Every miss, whether an unknown name or a wrong password, returns
// ErrInvalidCredentials.
func (s *PersonService) Authenticate(ctx context.Context, name, password string) (types.Person, error) {
	rec, err := s.repo.GetByLookup(ctx, s.cipher.LookupHash(name))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Person{}, ErrInvalidCredentials
		}
		return types.Person{}, err
	}

	if s.cipher.Decrypt(rec.PasswordEnc) != password {
		return types.Person{}, ErrInvalidCredentials
	}

	return s.decrypt(rec), nil
}

func (s *PersonService) GetByID(ctx context.Context, id int) (types.Person, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Person{}, err
	}
	return s.decrypt(rec), nil
}

// List returns every person with fields decrypted, sorted by name
// ascending. Sorting happens here because ciphertext order is meaningless
// under random nonces.
func (s *PersonService) List(ctx context.Context) ([]types.Person, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	people := make([]types.Person, 0, len(records))
	for _, rec := range records {
		people = append(people, s.decrypt(rec))
	}

	sort.Slice(people, func(i, j int) bool {
		return people[i].Name < people[j].Name
	})
	return people, nil
}

func (s *PersonService) decrypt(rec store.PersonRecord) types.Person {
	return types.Person{
		ID:            rec.ID,
		Name:          s.cipher.Decrypt(rec.NameEnc),
		Age:           rec.Age,
		Phone:         s.cipher.Decrypt(rec.PhoneEnc),
		SecurityLevel: rec.SecurityLevel,
		Password:      s.cipher.Decrypt(rec.PasswordEnc),
		CreatedAt:     rec.CreatedAt,
	}
}
