package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	. "github.com/myschool/myschool/apps/api/echo"
	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/fund"
	"github.com/myschool/myschool/core/preference"
	"github.com/myschool/myschool/core/sms"
	"github.com/myschool/myschool/core/staff"
	"github.com/myschool/myschool/core/student"
	"github.com/myschool/myschool/core/user"
	emailsvc "github.com/myschool/myschool/services/email"
	inmemdb "github.com/myschool/myschool/storage/database/inmem"
	kvstore "github.com/myschool/myschool/storage/kv"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// scriptedGateway accepts every message unless a code or an error is scripted for its number.
type scriptedGateway struct {
	balance decimal.Decimal
	codes   map[string]int
	errs    map[string]error

	mu   sync.Mutex
	sent []sms.Submission
}

func (g *scriptedGateway) Send(ctx context.Context, sub sms.Submission) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	g.mu.Lock()
	g.sent = append(g.sent, sub)
	g.mu.Unlock()

	if err, ok := g.errs[sub.Number]; ok {
		return 0, err
	}
	if code, ok := g.codes[sub.Number]; ok {
		return code, nil
	}
	return sms.CodeSubmitted, nil
}

func (g *scriptedGateway) Balance(context.Context) (decimal.Decimal, error) {
	return g.balance, nil
}

func (g *scriptedGateway) submissions() []sms.Submission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sms.Submission(nil), g.sent...)
}

// fakeImageHost keeps uploads in memory.
type fakeImageHost struct {
	mu      sync.Mutex
	uploads map[string][]byte // {url: content}
}

func (h *fakeImageHost) Upload(_ context.Context, r io.Reader, filename string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "https://i.ibb.co/test/" + filename
	h.mu.Lock()
	h.uploads[url] = content
	h.mu.Unlock()
	return url, nil
}

func (h *fakeImageHost) Fetch(_ context.Context, url string) ([]byte, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	content, ok := h.uploads[url]
	if !ok {
		return nil, "", errors.New("no image at " + url)
	}
	return content, "image/jpeg", nil
}

type fixture struct {
	conf    *core.Config
	app     *Server
	usrRepo user.Repository
	stdRepo student.Repository
	tchRepo staff.Repository
	txnRepo fund.Repository
	mailSvc *emailsvc.ConsoleServiceMock
	gateway *scriptedGateway
	images  *fakeImageHost
}

func setup(t *testing.T) *fixture {
	conf := &core.Config{
		AppName:         "MySchool",
		TestMode:        true,
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://front.test",
		FromEmail:       "noreply@school.test",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 7 * 24 * time.Hour
	conf.Server.PasswordResetTimeoutDelta = 3 * 24 * time.Hour
	conf.SMS.Rate = decimal.RequireFromString("0.35")
	conf.Students.PageSize = 50
	conf.Students.ExportBatchSize = 2

	e := en.New()
	translator, _ := ut.New(e, e).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	user.LoadCommonPasswords(nopLogger{})

	// set up DB & repos
	db := inmemdb.NewDB()
	kv := kvstore.NewMemStore()
	f := &fixture{
		conf:    conf,
		usrRepo: inmemdb.NewUserRepository(db),
		stdRepo: inmemdb.NewStudentRepository(db),
		tchRepo: inmemdb.NewTeacherRepository(db),
		txnRepo: inmemdb.NewTransactionRepository(db),
		mailSvc: emailsvc.NewConsoleServiceMock(conf, nopLogger{}),
		gateway: &scriptedGateway{balance: decimal.NewFromInt(10)},
		images:  &fakeImageHost{uploads: make(map[string][]byte)},
	}

	// set up services
	stdSvc := student.NewService(f.stdRepo, conf)
	smsSvc := sms.NewService(f.gateway, conf.SMS.Rate, nopLogger{})

	// set up server
	f.app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         nopLogger{},
		DisableReqLogs: true,
		UserSvc:        user.NewServiceMock(f.usrRepo, f.mailSvc, conf),
		StudentSvc:     stdSvc,
		StaffSvc:       staff.NewService(f.tchRepo),
		FundSvc:        fund.NewService(f.txnRepo),
		SMSSvc:         smsSvc,
		SMSDesk:        sms.NewDesk(smsSvc, sms.NewDraftStore(kv), stdSvc),
		PreferenceSvc:  preference.NewService(kv),
		ImageHost:      f.images,
		Validate:       validate,
		Translator:     translator,
	})
	t.Cleanup(func() { _ = f.app.Close() })
	return f
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarchallObj(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarchallObj() failed: %v; data %s", err, data)
	}
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
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runHTTPTests serves each test case and checks its response.
func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.method == "" {
				tt.method = http.MethodGet
			}
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
