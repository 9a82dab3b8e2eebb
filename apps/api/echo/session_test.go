package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/session"
	"github.com/trezcool/sahayak/core/user"
	"github.com/trezcool/sahayak/storage/directory"
	"github.com/trezcool/sahayak/tests"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func setup(t *testing.T) (*Server, *session.Store) {
	t.Helper()
	store := testutil.NewStore(t, nil)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	srv := NewServer(ServerDeps{
		Conf:           &core.Config{AppName: "Sahayak", TestMode: true},
		Logger:         core.NopLogger{},
		Session:        store,
		Keys:           directory.NewStatic().Keys(),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return srv, store
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func TestHome(t *testing.T) {
	srv, _ := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Sahayak API!", rec.Body.String())
}

func TestSessionAPI_login(t *testing.T) {
	tests := []httpTest{
		{
			name:     "unknown account with suggestion",
			body:     []byte(`{"email":"teacher@shcool.com"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"user not found","suggestion":"teacher@school.com"}`),
		},
		{
			name:     "unknown account",
			body:     []byte(`{"email":"zz@qq.io"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"user not found"}`),
		},
		{
			name:     "missing email",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"this field is required"}`),
		},
		{
			name:     "valid",
			body:     []byte(`{"email":" Teacher@School.com"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := setup(t)
			req, rec := newRequest(http.MethodPost, "/v1/session/login", tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestSessionAPI_flow(t *testing.T) {
	srv, store := setup(t)

	// logged out
	req, rec := newRequest(http.MethodGet, "/v1/session")
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "logged_out", snap["state"])
	assert.Equal(t, "login", snap["route"])
	assert.Nil(t, snap["user"])

	// onboarding needs a user
	req, rec = newRequest(http.MethodPost, "/v1/session/onboarding", marshallObj(t, testutil.OnboardingProfile()))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// login
	req, rec = newRequest(http.MethodPost, "/v1/session/login", []byte(`{"email":"newteacher@school.com"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, "not_onboarded", snap["state"])
	assert.Equal(t, "onboarding", snap["route"])
	assert.Nil(t, snap["selectedClass"])

	// invalid onboarding form
	req, rec = newRequest(http.MethodPost, "/v1/session/onboarding", []byte(`{"grades":["Grade 3"],"subjects":[],"classes":{"Grade 3":["3A"]}}`))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "subjects")

	// onboarding
	req, rec = newRequest(http.MethodPost, "/v1/session/onboarding", marshallObj(t, testutil.OnboardingProfile()))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.Equal(t, "onboarded_with_class", snap["state"])
	assert.Equal(t, map[string]interface{}{"grade": "Grade 3", "className": "3A"}, snap["selectedClass"])

	// classes
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: []byte(`[{"grade":"Grade 3","className":"3A"},{"grade":"Grade 3","className":"3B"}]`),
	}
	req, rec = newRequest(http.MethodGet, "/v1/session/classes")
	srv.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	// switch to an unknown class
	req, rec = newRequest(http.MethodPut, "/v1/session/class", []byte(`{"grade":"Grade 6","className":"6A"}`))
	srv.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"className":"` + errUnknownClass + `"}`)}, rec)

	// switch
	req, rec = newRequest(http.MethodPut, "/v1/session/class", []byte(`{"grade":"Grade 3","className":"3B"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	class, _ := store.SelectedClass()
	assert.Equal(t, user.ClassContext{Grade: "Grade 3", ClassName: "3B"}, class)

	// logout
	req, rec = newRequest(http.MethodDelete, "/v1/session")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, session.StateLoggedOut, store.State())
}

func TestSessionAPI_principal(t *testing.T) {
	srv, _ := setup(t)

	req, rec := newRequest(http.MethodPost, "/v1/session/login", []byte(`{"email":"principal@school.com"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "onboarded_no_class", snap["state"])
	assert.Equal(t, "dashboard", snap["route"])

	req, rec = newRequest(http.MethodGet, "/v1/session/classes")
	srv.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, user.SchoolRoster)}, rec)

	req, rec = newRequest(http.MethodPost, "/v1/session/onboarding", marshallObj(t, testutil.OnboardingProfile()))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newRequest(http.MethodPut, "/v1/session/class", []byte(`{"grade":"Grade 4","className":"4A"}`))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAPI_switchClass_loggedOut(t *testing.T) {
	srv, _ := setup(t)
	req, rec := newRequest(http.MethodPut, "/v1/session/class", []byte(`{"grade":"Grade 4","className":"4A"}`))
	srv.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: []byte(`{"error":"no user logged in"}`)}, rec)
}

func TestCatalog(t *testing.T) {
	srv, _ := setup(t)
	req, rec := newRequest(http.MethodGet, "/v1/catalog")
	srv.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marshallObj(t, user.GetCatalog())}, rec)
}

func TestSessionAPI_switchClass_punctuatedSection(t *testing.T) {
	srv, store := setup(t)

	req, rec := newRequest(http.MethodPost, "/v1/session/login", []byte(`{"email":"newteacher@school.com"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	form := []byte(`{"grades":["Grade 3"],"subjects":["Science"],"classes":{"Grade 3":["3.A","3/B"]}}`)
	req, rec = newRequest(http.MethodPost, "/v1/session/onboarding", form)
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"grade": "Grade 3", "className": "3.A"}, decodeSnapshot(t, rec)["selectedClass"])

	req, rec = newRequest(http.MethodPut, "/v1/session/class", []byte(`{"grade":"Grade 3","className":"3/B"}`))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	class, _ := store.SelectedClass()
	assert.Equal(t, user.ClassContext{Grade: "Grade 3", ClassName: "3/B"}, class)

	req, rec = newRequest(http.MethodPut, "/v1/session/class", []byte(`{"grade":"Grade 3","className":""}`))
	srv.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: []byte(`{"className":"this field is required"}`)}, rec)
}
