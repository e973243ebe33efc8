package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/estatehub/backend/internal/domain/agency"
	"github.com/estatehub/backend/internal/domain/notification"
	"github.com/estatehub/backend/internal/infrastructure/notify"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres-dialect GORM DB backed by sqlmock.
// The connection is closed when the test ends.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewTestUUID generates a deterministic UUID from a seed string.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TestAgencyID returns the standard agency ID for tests.
func TestAgencyID() uuid.UUID {
	return NewTestUUID("test-agency")
}

// TestUserID returns the standard user ID for tests.
func TestUserID() uuid.UUID {
	return NewTestUUID("test-user")
}

// Actor builds an actor of the standard test agency with the given role.
// The member ID is derived from the role so two roles never collide.
func Actor(role agency.Role) agency.Actor {
	return agency.Actor{
		UserID:   NewTestUUID("user-" + string(role)),
		AgencyID: TestAgencyID(),
		MemberID: NewTestUUID("member-" + string(role)),
		Role:     role,
	}
}

// MemberFor returns the membership matching an actor.
func MemberFor(a agency.Actor) *agency.Member {
	m, _ := agency.NewMember(a.AgencyID, a.UserID, a.Role, "")
	m.ID = a.MemberID
	return m
}

// SentMessage is one delivery recorded by RecordingSender.
type SentMessage struct {
	Recipient notify.Recipient
	Message   notify.Message
}

// RecordingSender is a notify.Sender that records deliveries and can be told to fail.
type RecordingSender struct {
	mu      sync.Mutex
	channel notification.Channel
	Err     error
	Sent    []SentMessage
}

// NewRecordingSender creates a sender for the channel.
func NewRecordingSender(ch notification.Channel) *RecordingSender {
	return &RecordingSender{channel: ch}
}

func (s *RecordingSender) Channel() notification.Channel { return s.channel }

func (s *RecordingSender) Accepts(r notify.Recipient) bool {
	switch s.channel {
	case notification.ChannelEmail:
		return r.Email != ""
	case notification.ChannelTelegram:
		return r.TelegramChatID != ""
	}
	return false
}

func (s *RecordingSender) Send(_ context.Context, r notify.Recipient, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, SentMessage{Recipient: r, Message: msg})
	return nil
}

// Count returns the number of successful deliveries.
func (s *RecordingSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

var _ notify.Sender = (*RecordingSender)(nil)

// JSONResponse parses the recorder body as a JSON object.
func JSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), "Failed to parse JSON response: %s", w.Body.String())
	return result
}

// AssertErrorResponse asserts the envelope is an error with the given code.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, "Unexpected status code: %s", w.Body.String())
	resp := JSONResponse(t, w)
	assert.Equal(t, false, resp["success"])
	errMap, ok := resp["error"].(map[string]any)
	require.True(t, ok, "Expected error object in response")
	assert.Equal(t, code, errMap["code"])
}

// ToJSONReader converts a value to a JSON io.Reader.
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
