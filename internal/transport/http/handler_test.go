package httptransport

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sdfactory/internal/credential"
	"sdfactory/internal/document"
	jwttoken "sdfactory/internal/jwt_token"
	"sdfactory/internal/transport/http/mocks"
	dErrors "sdfactory/pkg/domain-errors"
	"sdfactory/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/pipeline-mocks.go -package=mocks Processor

var jwtService = jwttoken.NewJWTService("test-signing-key", "test-issuer", "test-audience")

const participantBody = `{
	"externalId": "ID01234",
	"type": "LegalParticipant",
	"holder": "BPNL000000000001",
	"issuer": "CAXSDUMMYCATENAZZ",
	"registrationNumber": [{"type": "taxID", "value": "123/456/789"}],
	"headquarterAddressCountry": "DE-BY",
	"legalAddressCountry": "DE-NW"
}`

func newTestRouter(t *testing.T, enforceAuth bool) (http.Handler, *mocks.MockProcessor) {
	t.Helper()
	ctrl := gomock.NewController(t)
	processor := mocks.NewMockProcessor(ctrl)
	h := New(processor, jwttoken.NewJWTServiceAdapter(jwtService), enforceAuth, slog.Default(), nil)
	return NewRouter(h), processor
}

func issueRequest(t *testing.T, router http.Handler, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/rel3/selfdescription", body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return testutil.DoRequest(router, req)
}

func issuerToken(t *testing.T, roles ...string) string {
	t.Helper()
	token, err := jwtService.GenerateAccessToken("service-account", "test-client", roles, time.Hour)
	require.NoError(t, err)
	return token
}

func TestHandleIssue_Accepted(t *testing.T) {
	router, processor := newTestRouter(t, true)

	processor.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx interface{}, doc document.Document) (credential.Bundle, error) {
			lp, ok := doc.(document.LegalParticipant)
			require.True(t, ok)
			assert.Equal(t, "ID01234", lp.ExternalID)
			return credential.Bundle{
				ExternalID:  lp.ExternalID,
				Credentials: make([]credential.Credential, 2),
			}, nil
		})

	rec := issueRequest(t, router, participantBody, issuerToken(t, RoleIssue))
	testutil.AssertStatus(t, rec, http.StatusAccepted)

	got := testutil.UnmarshalResponse[issueResponse](t, rec)
	assert.Equal(t, "ID01234", got.ExternalID)
	assert.Equal(t, 2, got.Credentials)
}

func TestHandleIssue_MissingTokenIs401(t *testing.T) {
	router, _ := newTestRouter(t, true)
	rec := issueRequest(t, router, participantBody, "")
	testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "unauthorized")
}

func TestHandleIssue_MissingRoleIs403(t *testing.T) {
	router, _ := newTestRouter(t, true)
	rec := issueRequest(t, router, participantBody, issuerToken(t, "read_self_descriptions"))
	testutil.AssertStatusAndError(t, rec, http.StatusForbidden, "forbidden")
}

func TestHandleIssue_AuthBypassWhenNotEnforced(t *testing.T) {
	router, processor := newTestRouter(t, false)
	processor.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		Return(credential.Bundle{ExternalID: "ID01234"}, nil)

	rec := issueRequest(t, router, participantBody, "")
	testutil.AssertStatus(t, rec, http.StatusAccepted)
}

func TestHandleIssue_MalformedBodyIs400(t *testing.T) {
	router, _ := newTestRouter(t, true)
	rec := issueRequest(t, router, "{not json", issuerToken(t, RoleIssue))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "bad_request")

	body := testutil.UnmarshalErrorResponse(t, rec)
	assert.NotEmpty(t, body["error_description"])
}

func TestHandleIssue_InvalidDocumentIs400(t *testing.T) {
	router, processor := newTestRouter(t, true)
	processor.EXPECT().Process(gomock.Any(), gomock.Any()).Times(0)

	body := `{"externalId":"E1","type":"LegalParticipant","holder":"BPNL000000000001","issuer":"I1"}`
	rec := issueRequest(t, router, body, issuerToken(t, RoleIssue))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "bad_request")

	resp := testutil.UnmarshalErrorResponse(t, rec)
	assert.Contains(t, resp["error_description"], "registration number")
}

func TestHandleIssue_UnknownTypeIs400(t *testing.T) {
	router, _ := newTestRouter(t, true)
	rec := issueRequest(t, router, `{"externalId":"E1","type":"Robot","holder":"H1","issuer":"I1"}`, issuerToken(t, RoleIssue))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "bad_request")
}

func TestHandleIssue_UpstreamFailureIs502WithoutDetail(t *testing.T) {
	router, processor := newTestRouter(t, true)
	processor.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		Return(credential.Bundle{}, dErrors.New(dErrors.CodeUpstream, "wallet answered status 503"))

	rec := issueRequest(t, router, participantBody, issuerToken(t, RoleIssue))
	testutil.AssertStatusAndError(t, rec, http.StatusBadGateway, "upstream_error")

	body := testutil.UnmarshalErrorResponse(t, rec)
	assert.Empty(t, body["error_description"])
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, true)
	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(t, rec)
}

func TestMetricsEndpointExposed(t *testing.T) {
	router, _ := newTestRouter(t, true)
	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rec)
}
