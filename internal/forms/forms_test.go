package forms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/puzzo-dev/sitefront/internal/content"
)

type erpRequest struct {
	path string
	auth string
	body map[string]any
}

func newERP(t *testing.T, status int, reply string) (*httptest.Server, *[]erpRequest) {
	t.Helper()
	var got []erpRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = append(got, erpRequest{path: r.URL.Path, auth: r.Header.Get("Authorization"), body: body})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func validContact() *Contact {
	return &Contact{
		Name:    "Ada Obi",
		Email:   "ada@example.com",
		Message: "We need a new marketing site.",
	}
}

func TestSubmitPostsToERP(t *testing.T) {
	srv, got := newERP(t, http.StatusOK, `{"data":{"name":"CRM-LEAD-0007"}}`)
	s := NewSubmitter(Options{Credentials: &content.ERPCredentials{BaseURL: srv.URL, APIKey: "k", APISecret: "s"}})

	receipt, err := s.Submit(context.Background(), validContact())
	require.NoError(t, err)
	require.Equal(t, Receipt{ID: "CRM-LEAD-0007", DocType: "Lead"}, receipt)

	require.Len(t, *got, 1)
	req := (*got)[0]
	require.Equal(t, "/api/resource/Lead", req.path)
	require.Equal(t, "token k:s", req.auth)
	require.Equal(t, "Ada Obi", req.body["lead_name"])
	require.Equal(t, "Lead", req.body["doctype"])
	require.NotContains(t, req.body, "phone", "empty fields are omitted")
}

func TestSubmitSanitisesFreeText(t *testing.T) {
	srv, got := newERP(t, http.StatusOK, `{"data":{"name":"CRM-LEAD-0008"}}`)
	s := NewSubmitter(Options{Credentials: &content.ERPCredentials{BaseURL: srv.URL, APIKey: "k", APISecret: "s"}})

	c := validContact()
	c.Name = "O'Brien <script>alert(1)</script>"
	c.Message = "<b>Hello</b> there, we need help"
	_, err := s.Submit(context.Background(), c)
	require.NoError(t, err)

	body := (*got)[0].body
	require.Equal(t, "O'Brien", body["lead_name"])
	require.Equal(t, "Hello there, we need help", body["notes"])
}

func TestSubmitValidation(t *testing.T) {
	s := NewSubmitter(Options{})
	_, err := s.Submit(context.Background(), &Contact{Email: "not-an-email", Message: "short"})

	var fe *Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, KindValidation, fe.Kind)
	require.Equal(t, map[string]string{"name": "required", "email": "email", "message": "min"}, fe.Fields)
	require.True(t, IsKind(err, KindValidation))
	require.EqualError(t, err, "forms: invalid Lead: email, message, name")
}

func TestBookingValidatesDate(t *testing.T) {
	s := NewSubmitter(Options{})
	_, err := s.Submit(context.Background(), &Booking{
		Name: "Ada", Email: "ada@example.com", Service: "web-development", Date: "15/01/2026",
	})
	var fe *Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "datetime", fe.Fields["date"])
}

func TestSubmitWithoutERPReturnsFakeReceipt(t *testing.T) {
	s := NewSubmitter(Options{Credentials: &content.ERPCredentials{BaseURL: "https://erp.example.com"}})
	receipt, err := s.Submit(context.Background(), &Newsletter{Email: "ada@example.com"})
	require.NoError(t, err)
	require.True(t, receipt.Fake)
	require.Equal(t, "Email Group Member", receipt.DocType)
	require.True(t, strings.HasPrefix(receipt.ID, "fake_"))
	id, err := ulid.ParseStrict(strings.TrimPrefix(receipt.ID, "fake_"))
	require.NoError(t, err)
	require.NotZero(t, id.Time())

	next, err := s.Submit(context.Background(), &Newsletter{Email: "ada@example.com"})
	require.NoError(t, err)
	require.NotEqual(t, receipt.ID, next.ID)
}

func TestLookupCredentialsWin(t *testing.T) {
	srv, got := newERP(t, http.StatusOK, `{"data":{"name":"EV-1"}}`)
	s := NewSubmitter(Options{
		Credentials: &content.ERPCredentials{BaseURL: "http://127.0.0.1:1", APIKey: "x", APISecret: "y"},
		Lookup: func(context.Context) *content.ERPCredentials {
			return &content.ERPCredentials{BaseURL: srv.URL, APIKey: "cms", APISecret: "secret"}
		},
	})
	receipt, err := s.Submit(context.Background(), &Booking{
		Name: "Ada", Email: "ada@example.com", Service: "cloud-infrastructure", Date: "2026-02-03", Time: "14:30",
	})
	require.NoError(t, err)
	require.Equal(t, "EV-1", receipt.ID)
	require.Equal(t, "token cms:secret", (*got)[0].auth)
	require.Equal(t, "2026-02-03 14:30:00", (*got)[0].body["starts_on"])
	require.Equal(t, "/api/resource/Event", (*got)[0].path)
}

func TestSubmitFailureKinds(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusBadRequest, KindRejected},
		{http.StatusForbidden, KindRejected},
		{http.StatusTooManyRequests, KindUnavailable},
		{http.StatusBadGateway, KindUnavailable},
	}
	for _, tc := range cases {
		srv, _ := newERP(t, tc.status, `{"exc":"boom"}`)
		s := NewSubmitter(Options{Credentials: &content.ERPCredentials{BaseURL: srv.URL, APIKey: "k", APISecret: "s"}})
		_, err := s.Submit(context.Background(), &Newsletter{Email: "ada@example.com"})

		var fe *Error
		require.ErrorAs(t, err, &fe)
		require.Equal(t, tc.kind, fe.Kind, "status %d", tc.status)
		require.Equal(t, tc.status, fe.Status)
		require.Contains(t, fe.Error(), "boom")
	}
}

func TestSubmitUnreachable(t *testing.T) {
	srv, _ := newERP(t, http.StatusOK, `{}`)
	srv.Close()
	s := NewSubmitter(Options{Credentials: &content.ERPCredentials{BaseURL: srv.URL, APIKey: "k", APISecret: "s"}})
	_, err := s.Submit(context.Background(), &Newsletter{Email: "ada@example.com"})
	require.True(t, IsKind(err, KindUnavailable))
	require.NotNil(t, (err.(*Error)).Unwrap())
}
