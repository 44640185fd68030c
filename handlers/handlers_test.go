package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/padraicbc/thunderbolt/assistant"
	"github.com/padraicbc/thunderbolt/ballistics"
	"github.com/padraicbc/thunderbolt/catalog"
	mw "github.com/padraicbc/thunderbolt/middleware"
	"github.com/padraicbc/thunderbolt/models"
	"github.com/padraicbc/thunderbolt/session"
)

var testKey = []byte("handler-test-key")

type fakeUsers map[string]string

func (f fakeUsers) ByUsername(_ context.Context, username string) (*models.User, error) {
	hash, ok := f[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.User{ID: 1, Username: username, Password: hash}, nil
}

type fakeHistory struct {
	user  string
	limit int
}

func (f *fakeHistory) Recent(_ context.Context, user string, limit int) ([]models.AssistantQuery, error) {
	f.user, f.limit = user, limit
	return []models.AssistantQuery{{ID: 7, ProfileID: "default-sc76", Question: "hold?", Answer: "61 clicks", DurationMS: 120}}, nil
}

type fakeAssistant struct {
	answer string
	err    error
	prompt string
}

func (f *fakeAssistant) Ask(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

type testServer struct {
	e       *echo.Echo
	store   *session.Store
	ai      *fakeAssistant
	history *fakeHistory
	token   string
}

func setup(t *testing.T) *testServer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	store, err := session.New(catalog.DefaultProfiles(), catalog.StandardEnvironment())
	require.NoError(t, err)

	ai := &fakeAssistant{answer: "Dial 61 clicks."}
	hist := &fakeHistory{}
	h := New(fakeUsers{"padraic": string(hash)}, hist, store,
		assistant.NewService(ai, assistant.ProviderGemini, nil, nil), testKey)

	e := echo.New()
	h.Register(e, mw.JWT(testKey))

	tok, err := mw.NewToken("padraic", testKey, time.Now())
	require.NoError(t, err)
	return &testServer{e: e, store: store, ai: ai, history: hist, token: tok}
}

func (en *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(b)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if en.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+en.token)
	}
	rec := httptest.NewRecorder()
	en.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSignin(t *testing.T) {
	en := setup(t)
	en.token = ""

	rec := en.do(t, http.MethodPost, "/api/signin", credentials{Username: " padraic ", Password: "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tok := decode[map[string]string](t, rec)["token"]
	assert.NotEmpty(t, tok)

	en.token = tok
	assert.Equal(t, http.StatusOK, en.do(t, http.MethodGet, "/api/profiles", nil).Code)
}

func TestSignin_Rejected(t *testing.T) {
	en := setup(t)
	en.token = ""

	cases := []credentials{
		{Username: "padraic", Password: "wrong"},
		{Username: "nobody", Password: "hunter2"},
	}
	for _, creds := range cases {
		rec := en.do(t, http.MethodPost, "/api/signin", creds)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, creds.Username)
	}

	rec := en.do(t, http.MethodPost, "/api/signin", credentials{Username: "padraic"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	en := setup(t)
	en.token = ""

	for _, path := range []string{"/api/profiles", "/api/solution", "/api/trajectory", "/api/environment"} {
		assert.Equal(t, http.StatusUnauthorized, en.do(t, http.MethodGet, path, nil).Code, path)
	}
	assert.Equal(t, http.StatusOK, en.do(t, http.MethodGet, "/api/health", nil).Code)
}

func TestCatalog(t *testing.T) {
	en := setup(t)

	variants := decode[[]string](t, en.do(t, http.MethodGet, "/api/catalog/variants", nil))
	assert.Equal(t, []string{"SC-76 Thunderbolt (7.62mm)", "SC-86 (.338 Lapua)", "SC-127 (.50 BMG)"}, variants)

	scopes := decode[[]catalog.Scope](t, en.do(t, http.MethodGet, "/api/catalog/scopes", nil))
	assert.Len(t, scopes, 7)
}

func TestGetSolution(t *testing.T) {
	en := setup(t)

	rec := en.do(t, http.MethodGet, "/api/solution?range=500", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[solutionResponse](t, rec)

	assert.Equal(t, catalog.DefaultProfileID, out.ProfileID)
	assert.Equal(t, 15.27, out.Solution.ElevationMOA)
	assert.Equal(t, 61, out.Solution.ElevationClicks)
	assert.Equal(t, 1.11, out.Solution.WindageMOA)
	assert.Equal(t, 4, out.Solution.WindageClicks)
	assert.Equal(t, 0.629, out.Solution.TimeOfFlight)
	assert.Equal(t, 2500, out.Solution.Energy)
	assert.InDelta(t, 1.0, out.Air.DensityFactor, 1e-3)

	// Default range is 500.
	def := decode[solutionResponse](t, en.do(t, http.MethodGet, "/api/solution", nil))
	assert.Equal(t, out.Solution, def.Solution)
}

func TestGetSolution_BadRange(t *testing.T) {
	en := setup(t)
	assert.Equal(t, http.StatusBadRequest, en.do(t, http.MethodGet, "/api/solution?range=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, en.do(t, http.MethodGet, "/api/solution?range=-50", nil).Code)
	assert.Equal(t, http.StatusBadRequest, en.do(t, http.MethodGet, "/api/solution?range=far", nil).Code)
}

func TestPostSolution_Overrides(t *testing.T) {
	en := setup(t)

	wind := catalog.StandardEnvironment()
	wind.WindAngle = 270
	rec := en.do(t, http.MethodPost, "/api/solution", solveRequest{Range: 500, Environment: &wind})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[solutionResponse](t, rec)
	assert.Equal(t, -1.11, out.Solution.WindageMOA)
	assert.Equal(t, -4, out.Solution.WindageClicks)

	// The stored environment is untouched.
	assert.Equal(t, 90.0, en.store.Environment().WindAngle)

	rec = en.do(t, http.MethodPost, "/api/solution", solveRequest{Range: 500, ProfileID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = en.do(t, http.MethodPost, "/api/solution", solveRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrajectory(t *testing.T) {
	en := setup(t)

	rec := en.do(t, http.MethodGet, "/api/trajectory?range=510", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[trajectoryResponse](t, rec)

	assert.Equal(t, 500, out.SelectedRange)
	require.Len(t, out.Rows, 19)
	assert.Equal(t, 100.0, out.Rows[0].Range)
	assert.Equal(t, 1000.0, out.Rows[18].Range)
	assert.Equal(t, 61, out.Rows[8].ElevationClicks)
}

func TestEnvironment(t *testing.T) {
	en := setup(t)

	cold := catalog.StandardEnvironment()
	cold.Temperature = -20
	cold.WindSpeed = 10
	cold.WindAngle = 0
	rec := en.do(t, http.MethodPut, "/api/environment", cold)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[ballistics.EnvironmentalData](t, en.do(t, http.MethodGet, "/api/environment", nil))
	assert.Equal(t, cold, got)

	out := decode[solutionResponse](t, en.do(t, http.MethodGet, "/api/solution?range=700", nil))
	assert.Equal(t, 0, out.Solution.WindageClicks)
	assert.Greater(t, out.Air.DensityFactor, 1.1)
}

func TestSolution_UndefinedConditions(t *testing.T) {
	en := setup(t)

	frozen := catalog.StandardEnvironment()
	frozen.Temperature = -459.67
	require.Equal(t, http.StatusOK, en.do(t, http.MethodPut, "/api/environment", frozen).Code)

	for _, path := range []string{"/api/solution?range=500", "/api/trajectory"} {
		rec := en.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "air density", path)
	}

	rec := en.do(t, http.MethodPost, "/api/solution",
		solveRequest{Range: 500, Environment: &frozen})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolution_TinyMuzzleVelocity(t *testing.T) {
	en := setup(t)

	p := en.store.Active()
	p.MuzzleVelocity = 1e-300
	require.Equal(t, http.StatusOK, en.do(t, http.MethodPut, "/api/profiles/"+p.ID, p).Code)

	for _, path := range []string{"/api/solution?range=500", "/api/trajectory"} {
		rec := en.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "no usable solution", path)
	}
}

func TestProfiles_UpdateFlow(t *testing.T) {
	en := setup(t)

	p := decode[ballistics.RifleProfile](t, en.do(t, http.MethodGet, "/api/profiles/"+catalog.DefaultProfileID, nil))
	p.MuzzleVelocity = 2800
	p.BCType = "g7"
	p.BallisticCoefficient = 0.23

	rec := en.do(t, http.MethodPut, "/api/profiles/"+catalog.DefaultProfileID, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ballistics.G7, en.store.Active().BCType)

	out := decode[solutionResponse](t, en.do(t, http.MethodGet, "/api/solution?range=500", nil))
	assert.Equal(t, 2240, out.Solution.Velocity)
}

func TestProfiles_UpdateRejected(t *testing.T) {
	en := setup(t)
	p := en.store.Active()

	bad := p
	bad.MuzzleVelocity = 0
	rec := en.do(t, http.MethodPut, "/api/profiles/"+p.ID, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2650.0, en.store.Active().MuzzleVelocity)

	rec = en.do(t, http.MethodPut, "/api/profiles/other", p)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	missing := p
	missing.ID = ""
	rec = en.do(t, http.MethodPut, "/api/profiles/missing", missing)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusNotFound, en.do(t, http.MethodGet, "/api/profiles/missing", nil).Code)
}

func TestProfiles_CreateAndActivate(t *testing.T) {
	en := setup(t)

	p := en.store.Active()
	p.ID = ""
	p.Name = "SC-127 Heavy"
	p.Variant = ballistics.VariantSC127
	p.MuzzleVelocity = 2820
	p.BulletWeight = 750

	rec := en.do(t, http.MethodPost, "/api/profiles", p)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[ballistics.RifleProfile](t, rec)
	assert.Equal(t, "sc-127-heavy", created.ID)

	dup := p
	dup.ID = catalog.DefaultProfileID
	assert.Equal(t, http.StatusConflict, en.do(t, http.MethodPost, "/api/profiles", dup).Code)

	rec = en.do(t, http.MethodPut, "/api/profiles/active", setActiveRequest{ID: created.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, en.store.ActiveID())

	list := decode[profilesResponse](t, en.do(t, http.MethodGet, "/api/profiles", nil))
	assert.Equal(t, created.ID, list.ActiveID)
	assert.Len(t, list.Profiles, 2)

	active := decode[ballistics.RifleProfile](t, en.do(t, http.MethodGet, "/api/profiles/active", nil))
	assert.Equal(t, created.ID, active.ID)

	assert.Equal(t, http.StatusNotFound,
		en.do(t, http.MethodPut, "/api/profiles/active", setActiveRequest{ID: "nope"}).Code)
}

func TestAsk(t *testing.T) {
	en := setup(t)

	rec := en.do(t, http.MethodPost, "/api/assistant", askRequest{Question: "What is my hold at 500?"})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decode[assistant.Reply](t, rec)
	assert.Equal(t, assistant.Reply{Answer: "Dial 61 clicks."}, reply)
	assert.Contains(t, en.ai.prompt, "Rifle: SC-76 Thunderbolt (7.62mm) (Standard SC-76)")
	assert.Contains(t, en.ai.prompt, "User Query: What is my hold at 500?")
}

func TestAsk_ProviderFailure(t *testing.T) {
	en := setup(t)
	en.ai.err = errors.New("gemini: HTTP 401: API key not valid")

	rec := en.do(t, http.MethodPost, "/api/assistant", askRequest{Question: "wind?"})
	require.Equal(t, http.StatusOK, rec.Code)
	reply := decode[assistant.Reply](t, rec)
	assert.True(t, reply.Failed)
	assert.Equal(t, assistant.FallbackMessage, reply.Answer)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	en := setup(t)
	rec := en.do(t, http.MethodPost, "/api/assistant", askRequest{Question: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistantHistory(t *testing.T) {
	en := setup(t)

	rec := en.do(t, http.MethodGet, "/api/assistant/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]models.AssistantQuery](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, catalog.DefaultProfileID, rows[0].ProfileID)

	// Same key spelling as the solution payloads.
	raw := decode[[]map[string]any](t, rec)
	assert.Equal(t, catalog.DefaultProfileID, raw[0]["profileId"])
	assert.EqualValues(t, 120, raw[0]["durationMs"])
	assert.NotContains(t, raw[0], "profileID")
	assert.Equal(t, "padraic", en.history.user)
	assert.Equal(t, 5, en.history.limit)

	assert.Equal(t, http.StatusBadRequest, en.do(t, http.MethodGet, "/api/assistant/history?limit=x", nil).Code)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("padraic", "hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	_, err = HashPassword(" ", "x")
	assert.Error(t, err)
	_, err = HashPassword("u", "")
	assert.Error(t, err)
}
