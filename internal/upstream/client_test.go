package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vamshidandi/jobportal/internal/correlation"
	"github.com/vamshidandi/jobportal/internal/domain"
	"github.com/vamshidandi/jobportal/internal/errors"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, 5*time.Second)
	client.getPolicy.InitialBackoff = time.Millisecond
	return client
}

func TestLogin_Success(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login/", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds["username"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Login successful",
			"user_id": 7, "username": "alice", "email": "a@x.com",
			"access": "acc-token", "refresh": "ref-token",
		})
	}))

	result, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.TokenPair{Access: "acc-token", Refresh: "ref-token"}, result.Tokens)
	assert.Equal(t, int64(7), result.Identity.UserID)
	assert.Equal(t, "alice", result.Identity.Username)
	assert.Equal(t, "Login successful", result.Message)
}

func TestLogin_InvalidCredentials_VerbatimMessage(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))

	_, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidCredentials))
	assert.Equal(t, "Invalid credentials", errors.AsStructured(err).Message)
}

func TestLogin_ServerErrorIsNetwork(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetwork))
	assert.False(t, errors.IsKind(err, errors.KindInvalidCredentials))
}

func TestLogin_NetworkFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)

	_, err := client.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetwork))
}

func TestRegister_Success(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/register/", r.URL.Path)
		var reg domain.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		assert.Equal(t, "bob", reg.Username)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully"})
	}))

	msg, err := client.Register(context.Background(), domain.Registration{Username: "bob", Email: "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)
}

func TestRegister_ValidationFieldErrors(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		// field -> list of messages, as the service sends it
		_, _ = w.Write([]byte(`{"message":"Registration failed","errors":{"email":["This field is required."],"password":"Passwords do not match"}}`))
	}))

	_, err := client.Register(context.Background(), domain.Registration{Username: "bob"})
	require.Error(t, err)
	structured := errors.AsStructured(err)
	assert.Equal(t, errors.KindValidation, structured.Kind)
	assert.Equal(t, "Registration failed", structured.Message)
	assert.Equal(t, "This field is required.", structured.FieldErrors["email"])
	assert.Equal(t, "Passwords do not match", structured.FieldErrors["password"])
}

func TestRegister_ServerErrorIsNetwork(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Register(context.Background(), domain.Registration{Username: "bob"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetwork))
	assert.False(t, errors.IsKind(err, errors.KindValidation))
}

func TestCurrentUser_Success(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/", r.URL.Path)
		assert.Equal(t, "Bearer acc-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"user_id": 7, "username": "alice", "email": "a@x.com"})
	}))

	identity, err := client.CurrentUser(context.Background(), "acc-token")
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.UserID)
	assert.Equal(t, "a@x.com", identity.Email)
}

func TestCurrentUser_RejectionIsUnauthorized(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token not valid"}`))
	}))

	_, err := client.CurrentUser(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
}

func TestListJobs_UnwrapsDataEnvelope(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":1,"title":"Engineer","company":"Acme","About":"team"},{"id":2,"title":"Designer"}]}`))
	}))

	jobs, err := client.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Engineer", jobs[0].Title)
	assert.Equal(t, "team", jobs[0].About)
}

func TestGetJob_NotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/42/", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Job not found"})
	}))

	_, err := client.GetJob(context.Background(), "acc", 42)
	require.Error(t, err)
	structured := errors.AsStructured(err)
	assert.Equal(t, errors.KindNotFound, structured.Kind)
	assert.Equal(t, "Job not found", structured.Message)
}

func TestListApplications_BareArray(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/applications/7/", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"status":"pending","job":{"id":42,"title":"Engineer"}}]`))
	}))

	records, err := client.ListApplications(context.Background(), "acc", 7)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].Job.ID)
	assert.Equal(t, domain.StatusPending, records[0].Status)
}

func TestGet_RetriesTransientFailure(t *testing.T) {
	calls := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	_, err := client.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGet_DoesNotRetryRejection(t *testing.T) {
	calls := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.ListApplications(context.Background(), "acc", 7)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnauthorized))
	assert.Equal(t, 1, calls)
}

func TestApply_MultipartFields(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/apply/", r.URL.Path)
		assert.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "42", r.FormValue("job"))
		assert.Equal(t, "7", r.FormValue("applicant"))
		assert.Equal(t, "Dear team", r.FormValue("cover_letter"))

		file, header, err := r.FormFile("resume")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "resume.pdf", header.Filename)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Application submitted successfully"})
	}))

	msg, err := client.Apply(context.Background(), "acc", 7, domain.ApplicationDraft{
		JobID:         42,
		CoverLetter:   "Dear team",
		ResumeName:    "resume.pdf",
		ResumeContent: []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Application submitted successfully", msg)
}

func TestApply_DuplicateIsConflict(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "You have already applied for this job"})
	}))

	_, err := client.Apply(context.Background(), "acc", 7, domain.ApplicationDraft{JobID: 42})
	require.Error(t, err)
	structured := errors.AsStructured(err)
	assert.Equal(t, errors.KindConflict, structured.Kind)
	assert.Equal(t, "You have already applied for this job", structured.Message)
}

func TestSend_ForwardsCorrelationID(t *testing.T) {
	var seen string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(correlation.Header)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	ctx := correlation.WithID(context.Background(), "corr-123")
	_, err := client.ListJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "corr-123", seen)
}

func TestLogout_BestEffortStatus(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/logout/", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := client.Logout(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("status %d", http.StatusInternalServerError))
}
