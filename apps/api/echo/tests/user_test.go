package tests

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/myschool/myschool/apps/api/echo"
	"github.com/myschool/myschool/core/user"
	testutil "github.com/myschool/myschool/tests"
)

const strongPwd = "Sh0nar-Bangla!"

func Test_userApi_login(t *testing.T) {
	f := setup(t)

	testutil.CreateUser(t, f.usrRepo, "Admin", "admin@school.test", strongPwd, []string{user.RoleAdmin}, true)
	testutil.CreateUser(t, f.usrRepo, "Gone", "gone@school.test", strongPwd, []string{user.RoleStaff}, false)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.LoginRequest{Email: reqMsg, Password: reqMsg}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "lol", Password: "lol"}),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "admin@school.test", Password: "nope"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "ghost@school.test", Password: strongPwd}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "gone@school.test", Password: strongPwd}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/login"
	}
	runHTTPTests(t, f.app, tests)

	t.Run("logged in", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login",
			marchallObj(t, echoapi.LoginRequest{Email: " ADMIN@school.test ", Password: strongPwd}))
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		unmarchallObj(t, rec.Body.Bytes(), &resp)
		require.NotEmpty(t, resp.Token)

		// the token opens authed endpoints
		req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", resp.Token)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_userApi_me(t *testing.T) {
	f := setup(t)

	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin@school.test", "", []string{user.RoleAdmin}, true)
	ghost := user.User{ID: "e9a1b0fe-0000-4000-8000-000000000000", Name: "Ghost", Roles: []string{user.RoleStaff}}

	runHTTPTests(t, f.app, []httpTest{
		{name: "Auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Invalid token", path: "/v1/users/me", token: "lol", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "Unknown user", path: "/v1/users/me", token: getToken(t, f.conf, ghost), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "Me", path: "/v1/users/me", token: getToken(t, f.conf, admin), wantData: marchallObj(t, admin)},
	})
}

func Test_userApi_register(t *testing.T) {
	f := setup(t)

	owner := testutil.CreateUser(t, f.usrRepo, "Owner", "owner@school.test", "", []string{user.RoleAdminOwner}, true)
	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin@school.test", "", []string{user.RoleAdmin}, true)
	clerk := testutil.CreateUser(t, f.usrRepo, "Clerk", "clerk@school.test", "", []string{user.RoleStaff}, true)

	newUser := func(name, email, pwd string, roles ...string) []byte {
		return marchallObj(t, user.NewUser{Name: name, Email: email, Password: pwd, PasswordConfirm: pwd, Roles: roles})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, f.conf, clerk), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "email taken", token: getToken(t, f.conf, admin), wantCode: http.StatusBadRequest,
			body:     newUser("Clerk 2", "CLERK@school.test", strongPwd, user.RoleStaff),
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "unknown role", token: getToken(t, f.conf, admin), wantCode: http.StatusBadRequest,
			body:     newUser("Clerk 2", "clerk2@school.test", strongPwd, "teacher:"),
			wantData: marchallObj(t, map[string]string{"roles": "invalid roles"}),
		},
		{
			name: "password similar to name", token: getToken(t, f.conf, admin), wantCode: http.StatusBadRequest,
			body:     newUser("Rahimuddin1!", "rahim@school.test", "Rahimuddin1!", user.RoleStaff),
			wantData: marchallObj(t, map[string]string{"password": "password cannot be similar to user attributes"}),
		},
		{
			name: "cannot grant a higher role", token: getToken(t, f.conf, admin), wantCode: http.StatusBadRequest,
			body:     newUser("Boss", "boss@school.test", strongPwd, user.RoleAdminOwner),
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/register"
	}
	runHTTPTests(t, f.app, tests)

	t.Run("created", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, f.conf, owner),
			newUser(" Nasima ", "Nasima@School.test", strongPwd, user.RoleAdmin))
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		unmarchallObj(t, rec.Body.Bytes(), &usr)
		assert.Equal(t, "Nasima", usr.Name)
		assert.Equal(t, "nasima@school.test", usr.Email)
		assert.True(t, usr.IsActive)
		assert.Equal(t, []string{user.RoleAdmin}, []string(usr.Roles))

		stored, err := f.usrRepo.GetUserByEmail(context.Background(), "nasima@school.test")
		require.NoError(t, err)
		assert.NoError(t, stored.CheckPassword(strongPwd))
	})
}

func Test_userApi_roles(t *testing.T) {
	f := setup(t)

	admin := testutil.CreateUser(t, f.usrRepo, "Admin", "admin@school.test", "", []string{user.RoleAdmin}, true)
	clerk := testutil.CreateUser(t, f.usrRepo, "Clerk", "clerk@school.test", "", []string{user.RoleStaff}, true)

	runHTTPTests(t, f.app, []httpTest{
		{
			name: "Admin required", path: "/v1/users/roles", token: getToken(t, f.conf, clerk), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Roles", path: "/v1/users/roles", token: getToken(t, f.conf, admin), wantData: marchallObj(t, user.Roles)},
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	f := setup(t)

	gone := testutil.CreateUser(t, f.usrRepo, "Gone", "gone@school.test", "", []string{user.RoleStaff}, false)
	clerk := testutil.CreateUser(t, f.usrRepo, "Clerk", "clerk@school.test", "", []string{user.RoleStaff}, true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    f.conf.AppName,
			Subject:   clerk.ID,
			Audience:  "Office",
			ExpiresAt: now.Add(f.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * f.conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		IsStaff:      true,
		Roles:        clerk.Roles,
	}
	unrefreshableToken, err := echoapi.GenerateToken(f.conf, unrefreshableClaims)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, f.conf, gone), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/token-refresh"
	}
	runHTTPTests(t, f.app, tests)

	t.Run("Token refreshed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, f.conf, clerk))
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// cannot guess new token.. just check that it's not empty
		var resp echoapi.LoginResponse
		unmarchallObj(t, rec.Body.Bytes(), &resp)
		assert.NotEmpty(t, resp.Token)
	})
}

var resetLinkRegex = regexp.MustCompile(`http://front\.test/password-reset/([^/\s]+)/([^/\s]+)`)

func Test_userApi_passwordReset(t *testing.T) {
	f := setup(t)

	clerk := testutil.CreateUser(t, f.usrRepo, "Clerk", "clerk@school.test", "", []string{user.RoleStaff}, true)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "this field is required"}),
		},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "email must be a valid email address"}),
		},
		{
			name: "unknown email", body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@school.test"}),
			wantData: successData,
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/password-reset"
	}
	runHTTPTests(t, f.app, tests)
	require.Empty(t, f.mailSvc.SentMessages())

	// known email
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, echoapi.PasswordResetRequest{Email: clerk.Email}))
	f.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: successData}, rec)

	sent := f.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, clerk.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, clerk.Name)
	m := resetLinkRegex.FindStringSubmatch(sent[0].TextContent)
	require.Len(t, m, 3, sent[0].TextContent)
	uid, token := m[1], m[2]

	reqMsg := "this field is required"
	confirmTests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, user.ResetUserPassword{Token: reqMsg, UID: reqMsg, Password: reqMsg, PasswordConfirm: reqMsg}),
		},
		{
			name: "invalid pwd: min len", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "lol", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must contain at least 8 characters"}),
		},
		{
			name: "invalid pwd: no whitespace", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "l o loll", PasswordConfirm: "l o loll"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must not contain whitespace"}),
		},
		{
			name: "invalid pwd: not all numeric", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "12345678", PasswordConfirm: "12345678"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password cannot be entirely numeric"}),
		},
		{
			name: "invalid pwd: complexity", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "lol12345", PasswordConfirm: "lol12345"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"}),
		},
		{
			name: "invalid pwd: too common", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: "Password1!", PasswordConfirm: "Password1!"}),
			wantData: marchallObj(t, user.ResetUserPassword{Password: "password is too common"}),
		},
		{
			name: "PasswordConfirm must = Password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "lol", UID: "lol", Password: strongPwd, PasswordConfirm: "lol"}),
			wantData: marchallObj(t, user.ResetUserPassword{PasswordConfirm: "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: token, UID: "bG9s", Password: strongPwd, PasswordConfirm: strongPwd}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: "HE4TS-sigsig", UID: uid, Password: strongPwd, PasswordConfirm: strongPwd}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "valid token",
			body:     marchallObj(t, user.ResetUserPassword{Token: token, UID: uid, Password: strongPwd, PasswordConfirm: strongPwd}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
		{
			name: "token is single use", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.ResetUserPassword{Token: token, UID: uid, Password: "An0ther-Secret", PasswordConfirm: "An0ther-Secret"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
	}
	for i := range confirmTests {
		confirmTests[i].method = http.MethodPost
		confirmTests[i].path = "/v1/users/password-reset-confirm"
	}
	runHTTPTests(t, f.app, confirmTests)

	refreshed, err := f.usrRepo.GetUserByID(context.Background(), clerk.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword(strongPwd))
}
