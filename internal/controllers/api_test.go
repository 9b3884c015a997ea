package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"splitly-be/internal/entities"
	"splitly-be/internal/jwt"
	"splitly-be/internal/middleware"
	"splitly-be/internal/repository"
	"splitly-be/internal/service"

	"github.com/gin-gonic/gin"
)

// In-memory repositories backing the HTTP tests.

type fakeUserRepo struct {
	users  map[string]*entities.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entities.User)}
}

func (r *fakeUserRepo) Create(name, email, mobile, passwordHash string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return nil, repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	user := &entities.User{
		ID:           fmt.Sprintf("user-%d", r.nextID),
		Name:         name,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(id string) (*entities.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

type fakeExpenseRepo struct {
	expenses []*entities.Expense
	nextID   int
}

func (r *fakeExpenseRepo) Create(expense *entities.Expense) error {
	r.nextID++
	expense.ID = fmt.Sprintf("expense-%d", r.nextID)
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt
	r.expenses = append(r.expenses, expense)
	return nil
}

func (r *fakeExpenseRepo) FindByParticipant(userID string) ([]*entities.Expense, error) {
	var result []*entities.Expense
	for _, e := range r.expenses {
		for _, p := range e.Participants {
			if p.UserID == userID {
				result = append(result, e)
				break
			}
		}
	}
	return result, nil
}

func (r *fakeExpenseRepo) FindAll() ([]*entities.Expense, error) {
	return r.expenses, nil
}

type testEnv struct {
	router      *gin.Engine
	userRepo    *fakeUserRepo
	expenseRepo *fakeExpenseRepo
	jwtService  *jwt.JWTService
}

// setupEnv builds the real router wiring (services, controllers, auth
// guard) over in-memory repositories.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := newFakeUserRepo()
	expenseRepo := &fakeExpenseRepo{}
	jwtService := jwt.NewJWTService("test-secret", time.Hour)

	authService := service.NewAuthService(userRepo, jwtService)
	expenseService := service.NewExpenseService(expenseRepo, nil)

	userController := NewUserController(authService)
	expenseController := NewExpenseController(expenseService)

	router := gin.New()
	authGuard := middleware.AuthMiddleware(jwtService)

	users := router.Group("/users")
	{
		users.POST("/register", userController.Register)
		users.POST("/login", userController.Login)
		users.GET("/me", authGuard, userController.GetProfile)
	}

	expenses := router.Group("/expenses")
	expenses.Use(authGuard)
	{
		expenses.POST("/add", expenseController.AddExpense)
		expenses.GET("/user", expenseController.GetUserExpenses)
		expenses.GET("/all", expenseController.GetAllExpenses)
	}

	return &testEnv{
		router:      router,
		userRepo:    userRepo,
		expenseRepo: expenseRepo,
		jwtService:  jwtService,
	}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) register(t *testing.T, name, email string) {
	t.Helper()
	w := env.do(t, http.MethodPost, "/users/register", "", gin.H{
		"name": name, "email": email, "mobile": "1234567890", "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %s", email, w.Code, w.Body.String())
	}
}

func (env *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/users/login", "", gin.H{
		"email": email, "password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body = %s", email, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login %s: bad response %s", email, w.Body.String())
	}
	return "Bearer " + resp.Token
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an error envelope: %s", w.Body.String())
	}
	return resp.Error
}

func TestRegister_PasswordLength(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodPost, "/users/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "mobile": "1234567890", "password": "12345",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("5-char password: status = %d, want 400", w.Code)
	}
	if msg := errorMessage(t, w); !strings.Contains(msg, "password") {
		t.Errorf("error %q does not name the password field", msg)
	}

	w = env.do(t, http.MethodPost, "/users/register", "", gin.H{
		"name": "Alice", "email": "a@x.com", "mobile": "1234567890", "password": "123456",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("6-char password: status = %d, want 201, body = %s", w.Code, w.Body.String())
	}
}

func TestRegister_Duplicate(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Alice", "a@x.com")

	w := env.do(t, http.MethodPost, "/users/register", "", gin.H{
		"name": "Alice Again", "email": "a@x.com", "mobile": "0987654321", "password": "secret2",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status = %d, want 400", w.Code)
	}
	if msg := errorMessage(t, w); msg != "User already exists" {
		t.Errorf("error = %q, want %q", msg, "User already exists")
	}
	if len(env.userRepo.users) != 1 {
		t.Errorf("store has %d users, want exactly 1", len(env.userRepo.users))
	}
}

func TestLogin_NoExistenceLeak(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Alice", "a@x.com")

	wrongPass := env.do(t, http.MethodPost, "/users/login", "", gin.H{
		"email": "a@x.com", "password": "wrong-pass",
	})
	noUser := env.do(t, http.MethodPost, "/users/login", "", gin.H{
		"email": "nobody@x.com", "password": "secret1",
	})

	if wrongPass.Code != http.StatusBadRequest || noUser.Code != http.StatusBadRequest {
		t.Fatalf("status = %d / %d, want 400 / 400", wrongPass.Code, noUser.Code)
	}
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Errorf("bodies differ: %s vs %s", wrongPass.Body.String(), noUser.Body.String())
	}
	if msg := errorMessage(t, wrongPass); msg != "Invalid credentials" {
		t.Errorf("error = %q, want %q", msg, "Invalid credentials")
	}
}

func TestProfile_RoundTripWithoutPasswordHash(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Alice", "a@x.com")
	token := env.login(t, "a@x.com")

	w := env.do(t, http.MethodGet, "/users/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/users/me: status = %d, body = %s", w.Code, w.Body.String())
	}

	var profile map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("bad profile body: %s", w.Body.String())
	}
	if profile["email"] != "a@x.com" || profile["name"] != "Alice" {
		t.Errorf("unexpected profile: %v", profile)
	}
	body := w.Body.String()
	if strings.Contains(strings.ToLower(body), "password") || strings.Contains(body, "$2a$") {
		t.Errorf("profile response leaks password material: %s", body)
	}

	// A raw token without the Bearer prefix is accepted too.
	raw := strings.TrimPrefix(token, "Bearer ")
	w = env.do(t, http.MethodGet, "/users/me", raw, nil)
	if w.Code != http.StatusOK {
		t.Errorf("raw token: status = %d, want 200", w.Code)
	}
}

func TestAuthGuard_RejectsBadTokensWithoutSideEffects(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Alice", "a@x.com")
	token := env.login(t, "a@x.com")

	expired := jwt.NewJWTService("test-secret", -time.Minute)
	expiredToken, err := expired.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("failed to build expired token: %v", err)
	}

	body := gin.H{
		"description": "lunch", "amount": 30, "splitMethod": "equal",
		"participants": []gin.H{{"user": "user-1", "splitAmount": 30}},
	}

	tokens := map[string]string{
		"missing":  "",
		"expired":  "Bearer " + expiredToken,
		"tampered": token + "x",
		"garbage":  "Bearer not-a-token",
	}
	for name, tok := range tokens {
		t.Run(name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/expenses/add", tok, body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
	if len(env.expenseRepo.expenses) != 0 {
		t.Errorf("rejected requests created %d expenses", len(env.expenseRepo.expenses))
	}
}

func TestAddExpense_Validation(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Alice", "a@x.com")
	token := env.login(t, "a@x.com")

	tests := []struct {
		name string
		body gin.H
		want string
	}{
		{
			name: "empty participants",
			body: gin.H{
				"description": "lunch", "amount": 30, "splitMethod": "equal",
				"participants": []gin.H{},
			},
			want: `"participants" must contain at least 1 items`,
		},
		{
			name: "missing participants",
			body: gin.H{
				"description": "lunch", "amount": 30, "splitMethod": "equal",
			},
			want: `"participants" is required`,
		},
		{
			name: "unknown split method",
			body: gin.H{
				"description": "lunch", "amount": 30, "splitMethod": "uneven",
				"participants": []gin.H{{"user": "user-1", "splitAmount": 30}},
			},
			want: `"splitMethod" must be one of [equal exact percentage]`,
		},
		{
			name: "missing description",
			body: gin.H{
				"amount": 30, "splitMethod": "equal",
				"participants": []gin.H{{"user": "user-1", "splitAmount": 30}},
			},
			want: `"description" is required`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/expenses/add", token, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
			}
			if msg := errorMessage(t, w); msg != tt.want {
				t.Errorf("error = %q, want %q", msg, tt.want)
			}
		})
	}
	if len(env.expenseRepo.expenses) != 0 {
		t.Errorf("invalid requests created %d expenses", len(env.expenseRepo.expenses))
	}
}

func TestExpenseFlow_LunchScenario(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Alice", "a@x.com")
	env.register(t, "Bob", "b@x.com")
	tokenA := env.login(t, "a@x.com")
	tokenB := env.login(t, "b@x.com")

	userB, err := env.userRepo.FindByEmail("b@x.com")
	if err != nil {
		t.Fatalf("user B missing: %v", err)
	}
	userA, err := env.userRepo.FindByEmail("a@x.com")
	if err != nil {
		t.Fatalf("user A missing: %v", err)
	}

	w := env.do(t, http.MethodPost, "/expenses/add", tokenA, gin.H{
		"description": "lunch",
		"amount":      30,
		"splitMethod": "equal",
		"participants": []gin.H{
			{"user": userA.ID, "splitAmount": 15},
			{"user": userB.ID, "splitAmount": 15},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add expense: status = %d, body = %s", w.Code, w.Body.String())
	}
	var ack struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil || ack.Message != "Expense added successfully" {
		t.Errorf("unexpected ack: %s", w.Body.String())
	}

	// Both participants see the expense via /expenses/user.
	for name, token := range map[string]string{"A": tokenA, "B": tokenB} {
		w = env.do(t, http.MethodGet, "/expenses/user", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("user %s expenses: status = %d", name, w.Code)
		}
		var expenses []entities.Expense
		if err := json.Unmarshal(w.Body.Bytes(), &expenses); err != nil {
			t.Fatalf("user %s expenses: bad body %s", name, w.Body.String())
		}
		if len(expenses) != 1 {
			t.Fatalf("user %s sees %d expenses, want 1", name, len(expenses))
		}
		e := expenses[0]
		if e.Description != "lunch" || e.Amount != 30 || e.SplitMethod != "equal" {
			t.Errorf("user %s: unexpected expense %+v", name, e)
		}
		if e.CreatedBy != userA.ID {
			t.Errorf("user %s: CreatedBy = %q, want %q", name, e.CreatedBy, userA.ID)
		}
		if len(e.Participants) != 2 || e.Participants[0].UserID != userA.ID || e.Participants[1].UserID != userB.ID {
			t.Errorf("user %s: participants out of order: %+v", name, e.Participants)
		}
	}

	// /expenses/all returns the full store regardless of the caller.
	for name, token := range map[string]string{"A": tokenA, "B": tokenB} {
		w = env.do(t, http.MethodGet, "/expenses/all", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("all expenses as %s: status = %d", name, w.Code)
		}
		var expenses []entities.Expense
		if err := json.Unmarshal(w.Body.Bytes(), &expenses); err != nil {
			t.Fatalf("all expenses as %s: bad body %s", name, w.Body.String())
		}
		if len(expenses) != 1 {
			t.Errorf("all expenses as %s: got %d, want 1", name, len(expenses))
		}
	}
}

func TestGetUserExpenses_EmptyIsArray(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "Alice", "a@x.com")
	token := env.login(t, "a@x.com")

	w := env.do(t, http.MethodGet, "/expenses/user", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("empty result = %s, want []", body)
	}
}
