package handlers

import (
	"context"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/baking-contest/webapp/internal/fieldcrypt"
	"github.com/baking-contest/webapp/internal/services"
	"github.com/baking-contest/webapp/internal/store"
	"github.com/baking-contest/webapp/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret"

// fakePersonRepo is an in-memory PersonRepository.
type fakePersonRepo struct {
	records []store.PersonRecord
	nextID  int
}

func (f *fakePersonRepo) GetByID(ctx context.Context, id int) (store.PersonRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return store.PersonRecord{}, store.ErrNotFound
}

func (f *fakePersonRepo) GetByLookup(ctx context.Context, lookup string) (store.PersonRecord, error) {
	for _, rec := range f.records {
		if rec.NameLookup == lookup {
			return rec, nil
		}
	}
	return store.PersonRecord{}, store.ErrNotFound
}

func (f *fakePersonRepo) Create(ctx context.Context, rec store.PersonRecord) (store.PersonRecord, error) {
	f.nextID++
	rec.ID = f.nextID
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakePersonRepo) List(ctx context.Context) ([]store.PersonRecord, error) {
	return append([]store.PersonRecord(nil), f.records...), nil
}

// fakeEntryRepo is an in-memory EntryRepository.
type fakeEntryRepo struct {
	entries []types.Entry
	nextID  int
}

func (f *fakeEntryRepo) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	f.nextID++
	entry.ID = f.nextID
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeEntryRepo) List(ctx context.Context) ([]types.Entry, error) {
	return append([]types.Entry(nil), f.entries...), nil
}

func (f *fakeEntryRepo) ListByUser(ctx context.Context, userID int) ([]types.Entry, error) {
	var out []types.Entry
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type testApp struct {
	router        *chi.Mux
	personRepo    *fakePersonRepo
	entryRepo     *fakeEntryRepo
	personService *services.PersonService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	master := make([]byte, 32)
	_, err := rand.Read(master)
	require.NoError(t, err)
	cipher, err := fieldcrypt.New(master)
	require.NoError(t, err)

	personRepo := &fakePersonRepo{}
	entryRepo := &fakeEntryRepo{}
	personService := services.NewPersonService(personRepo, cipher)
	entryService := services.NewEntryService(entryRepo)

	router := chi.NewRouter()
	router.NotFound(NotFound)
	AuthRouter(router, personService, testSecret)
	PersonRouter(router, personService, testSecret)
	EntryRouter(router, entryService, testSecret)

	return &testApp{
		router:        router,
		personRepo:    personRepo,
		entryRepo:     entryRepo,
		personService: personService,
	}
}

func (app *testApp) addPerson(t *testing.T, name string, level int) types.Person {
	t.Helper()
	person, err := app.personService.Create(context.Background(), types.Person{
		Name:          name,
		Age:           30,
		Phone:         "555-0000",
		SecurityLevel: level,
		Password:      name + "pass",
	})
	require.NoError(t, err)
	return person
}

func sessionCookie(t *testing.T, person types.Person) *http.Cookie {
	t.Helper()
	token, err := issueSession(sessionFor(person), []byte(testSecret), defaultSessionTTL)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

func getPage(target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

func resultMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/result", loc.Path)
	return loc.Query().Get("msg")
}

func TestLoginSuccessIssuesSession(t *testing.T) {
	app := newTestApp(t)
	app.addPerson(t, "alice", types.LevelJudge)

	rec := app.do(postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"alicepass"},
	}))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var token string
	for _, cookie := range cookies {
		if cookie.Name == sessionCookieName {
			token = cookie.Value
		}
	}
	require.NotEmpty(t, token)

	session, err := parseSession(token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Name)
	assert.Equal(t, types.LevelJudge, session.Level)
}

func TestLoginFailureIsIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.addPerson(t, "alice", types.LevelParticipant)

	wrongPass := app.do(postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	}))
	unknownUser := app.do(postForm("/login", url.Values{
		"username": {"mallory"},
		"password": {"alicepass"},
	}))

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
	assert.Contains(t, wrongPass.Body.String(), "invalid username and/or password")
}

func TestLoginHonorsNextPath(t *testing.T) {
	app := newTestApp(t)
	app.addPerson(t, "alice", types.LevelParticipant)

	rec := app.do(postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"alicepass"},
		"next":     {"/my_entries"},
	}))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/my_entries", rec.Header().Get("Location"))

	// External and protocol-relative targets fall back to home.
	evil := app.do(postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"alicepass"},
		"next":     {"//evil.example.com/"},
	}))
	require.Equal(t, http.StatusFound, evil.Code)
	assert.Equal(t, "/", evil.Header().Get("Location"))
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(getPage("/add_entry"))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/add_entry", loc.Query().Get("next"))
}

func TestInsufficientLevelLooksLikeNotFound(t *testing.T) {
	app := newTestApp(t)
	judge := app.addPerson(t, "bob", types.LevelJudge)
	cookie := sessionCookie(t, judge)

	gated := app.do(getPage("/add_user", cookie))
	missing := app.do(getPage("/no_such_route", cookie))

	assert.Equal(t, http.StatusNotFound, gated.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, missing.Body.String(), gated.Body.String())

	// The same session clears the judge-level gate.
	allowed := app.do(getPage("/list_users", cookie))
	assert.Equal(t, http.StatusOK, allowed.Code)
}

func TestAddUserValidationAccumulates(t *testing.T) {
	app := newTestApp(t)
	admin := app.addPerson(t, "admin", types.LevelAdmin)

	rec := app.do(postForm("/add_user", url.Values{
		"name":           {"carol"},
		"age":            {"0"},
		"phone":          {"555-0101"},
		"security_level": {"5"},
		"password":       {"   "},
	}, sessionCookie(t, admin)))

	msg := resultMessage(t, rec)
	assert.Contains(t, msg, "Record NOT added:")
	assert.Contains(t, msg, "Age must be a whole number between 1 and 120.")
	assert.Contains(t, msg, "Security Level must be a number between 1 and 3.")
	assert.Contains(t, msg, "Login Password cannot be empty or spaces only.")
	assert.Equal(t, 3, strings.Count(msg, "\n"))

	// Only the pre-seeded admin row exists: nothing was written.
	assert.Len(t, app.personRepo.records, 1)
}

func TestAddUserSuccess(t *testing.T) {
	app := newTestApp(t)
	admin := app.addPerson(t, "admin", types.LevelAdmin)

	rec := app.do(postForm("/add_user", url.Values{
		"name":           {"carol"},
		"age":            {"28"},
		"phone":          {"555-0101"},
		"security_level": {"2"},
		"password":       {"carolpass"},
	}, sessionCookie(t, admin)))

	msg := resultMessage(t, rec)
	assert.Equal(t, "Record added successfully for user: carol", msg)
	assert.Len(t, app.personRepo.records, 2)
}

func TestAddEntryValidation(t *testing.T) {
	app := newTestApp(t)
	alice := app.addPerson(t, "alice", types.LevelParticipant)

	rec := app.do(postForm("/add_entry", url.Values{
		"item_name":     {"Rum Cake"},
		"num_excellent": {"2"},
		"num_ok":        {"1"},
		"num_bad":       {"-1"},
	}, sessionCookie(t, alice)))

	msg := resultMessage(t, rec)
	assert.Contains(t, msg, "Number of Bad Votes must be a whole number greater than or equal to 0.")
	assert.Empty(t, app.entryRepo.entries)
}

func TestAddEntryOwnedBySessionUser(t *testing.T) {
	app := newTestApp(t)
	alice := app.addPerson(t, "alice", types.LevelParticipant)

	rec := app.do(postForm("/add_entry", url.Values{
		"item_name":     {"Rum Cake"},
		"num_excellent": {"5"},
		"num_ok":        {"3"},
		"num_bad":       {"0"},
	}, sessionCookie(t, alice)))

	msg := resultMessage(t, rec)
	assert.Equal(t, "Record added successfully for entry: Rum Cake", msg)

	require.Len(t, app.entryRepo.entries, 1)
	entry := app.entryRepo.entries[0]
	assert.Equal(t, alice.ID, entry.UserID)
	assert.Equal(t, 5, entry.NumExcellent)
	assert.Equal(t, 3, entry.NumOk)
	assert.Equal(t, 0, entry.NumBad)
}

func TestMyEntriesShowsOnlyCallers(t *testing.T) {
	app := newTestApp(t)
	alice := app.addPerson(t, "alice", types.LevelParticipant)
	bob := app.addPerson(t, "bob", types.LevelParticipant)

	for _, seed := range []struct {
		userID int
		item   string
	}{
		{alice.ID, "Apple Pie"},
		{bob.ID, "Banana Bread"},
		{alice.ID, "Carrot Cake"},
	} {
		_, err := app.entryRepo.Create(context.Background(), types.Entry{
			UserID:   seed.userID,
			ItemName: seed.item,
		})
		require.NoError(t, err)
	}

	rec := app.do(getPage("/my_entries", sessionCookie(t, alice)))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Apple Pie")
	assert.Contains(t, body, "Carrot Cake")
	assert.NotContains(t, body, "Banana Bread")
}

func TestListUsersShowsDecryptedFields(t *testing.T) {
	app := newTestApp(t)
	judge := app.addPerson(t, "bob", types.LevelJudge)
	app.addPerson(t, "alice", types.LevelParticipant)

	rec := app.do(getPage("/list_users", sessionCookie(t, judge)))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "alice")
	assert.Contains(t, body, "alicepass")
	assert.Contains(t, body, "555-0000")

	// Nothing on the page may still be a cipher token.
	for _, record := range app.personRepo.records {
		assert.NotContains(t, body, record.NameEnc)
		assert.NotContains(t, body, record.PhoneEnc)
		assert.NotContains(t, body, record.PasswordEnc)
	}
}

func TestResultEscapesMessage(t *testing.T) {
	app := newTestApp(t)
	alice := app.addPerson(t, "alice", types.LevelParticipant)

	rec := app.do(getPage("/result?msg="+url.QueryEscape("<script>alert(1)</script>"), sessionCookie(t, alice)))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestResultRequiresSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(getPage("/result?msg=hello"))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	alice := app.addPerson(t, "alice", types.LevelParticipant)

	rec := app.do(getPage("/logout", sessionCookie(t, alice)))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			cleared = cookie.Value == "" && cookie.MaxAge < 0
		}
	}
	assert.True(t, cleared, "session cookie should be cleared")
}

func TestExpiredSessionIsRejected(t *testing.T) {
	app := newTestApp(t)
	alice := app.addPerson(t, "alice", types.LevelParticipant)

	token, err := issueSession(sessionFor(alice), []byte(testSecret), -time.Minute)
	require.NoError(t, err)

	rec := app.do(getPage("/my_entries", &http.Cookie{Name: sessionCookieName, Value: token}))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
}
