package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/admin"
	"gitlab.connectwisedev.com/storefront-service/pkg/auth"
	"gitlab.connectwisedev.com/storefront-service/pkg/cache"
	"gitlab.connectwisedev.com/storefront-service/pkg/cart"
	"gitlab.connectwisedev.com/storefront-service/pkg/catalog"
	"gitlab.connectwisedev.com/storefront-service/pkg/orders"
	"gitlab.connectwisedev.com/storefront-service/pkg/storage"
)

type memProducts struct {
	mu       sync.Mutex
	products []models.Product
	seq      int
}

func (m *memProducts) ListProducts(context.Context, []models.Category) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *memProducts) InsertProduct(_ context.Context, d models.ProductDraft) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p := d.WithID(fmt.Sprintf("new-%d", m.seq))
	m.products = append(m.products, p)
	return p, nil
}

func (m *memProducts) UpdateProduct(_ context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = p
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memProducts) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

type memCarts struct {
	mu    sync.Mutex
	carts map[string][]models.CartLine
}

func (m *memCarts) GetCart(_ context.Context, userID string) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneLines(m.carts[userID]), nil
}

func (m *memCarts) UpsertCart(_ context.Context, userID string, lines []models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = models.CloneLines(lines)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func (m *memUsers) CreateUser(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, e := range m.byID {
		if e.Email == u.Email {
			return models.User{}, models.ErrConflict
		}
	}
	u.ID = "u-" + u.Email
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) UserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (m *memUsers) UserByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, p models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byID[id]
	u.Name, u.Phone, u.Address = p.Name, p.Phone, p.Address
	m.byID[id] = u
	return nil
}

func (m *memUsers) promote(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if u.Email == email {
			u.IsAdmin = true
			m.byID[id] = u
		}
	}
}

type memOrders struct {
	mu     sync.Mutex
	orders []models.Order
}

func (m *memOrders) ListOrdersByUser(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) ListOrders(context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Order(nil), m.orders...), nil
}

func (m *memOrders) GetOrder(_ context.Context, id string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, models.ErrNotFound
}

func (m *memOrders) FindOrderForGuest(_ context.Context, email, id string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id && o.UserEmail == email {
			return o, nil
		}
	}
	return models.Order{}, models.ErrNotFound
}

func (m *memOrders) UpdateOrderStatus(_ context.Context, id string, st models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = st
			return nil
		}
	}
	return models.ErrNotFound
}

type testEnv struct {
	handler http.Handler
	users   *memUsers
	carts   *memCarts
	syncer  *cart.Syncer
	mr      *miniredis.Miniredis
	catalog *catalog.Store
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(rc.Close)

	products := &memProducts{products: []models.Product{
		{ID: "m1", Name: "Linen Shirt", Category: models.CategoryMen, Price: 450, Description: "Breathable", ImageURLs: []string{"m1.png"}, Sizes: models.DefaultSizes(), Stock: 4},
		{ID: "k1", Name: "Dino Tee", Category: models.CategoryKids, Price: 120, ImageURLs: []string{"k1.png"}, Stock: 9},
	}}
	store := catalog.NewStore(products)
	require.NoError(t, store.Load(context.Background()))

	remote := &memCarts{carts: map[string][]models.CartLine{}}
	syncer := cart.NewSyncer(remote)
	t.Cleanup(syncer.Close)
	sessions := cart.NewSessions(func(device string) cart.LocalStore {
		return cache.NewLocalCartStore(rc, device)
	}, remote, syncer)

	users := &memUsers{byID: map[string]models.User{}}
	files, err := storage.NewDiskStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)
	orderGW := &memOrders{orders: []models.Order{
		{ID: "ord-1", UserEmail: "guest@example.com", Status: models.OrderStatusPending, CreatedAt: now.Add(-time.Hour),
			Items: []models.CartLine{{ID: "m1-M", Size: "M", Name: "Linen Shirt", Price: 450, Quantity: 2}}, Total: 900},
	}}

	srv := &Server{
		Catalog:      store,
		Carts:        sessions,
		Auth:         auth.NewService(users, cache.NewSessionStore(rc), time.Hour),
		Orders:       orders.NewService(orderGW),
		Admin:        admin.NewProducts(store, files),
		FreeShipping: 300,
		Now:          func() time.Time { return now },
	}
	return &testEnv{handler: srv.Routes(), users: users, carts: remote, syncer: syncer, mr: mr, catalog: store}
}

type call struct {
	method, path string
	body         interface{}
	token        string
	device       string
}

func (e *testEnv) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.device != "" {
		req.Header.Set(DeviceHeader, c.device)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (e *testEnv) signIn(t *testing.T, email, device string) (string, loginResponse) {
	t.Helper()
	rec := e.do(t, call{method: http.MethodPost, path: "/auth/signup", body: auth.SignUpInput{
		Name: "Mona", Email: email, Password: "pw", Phone: "0100", Address: "Cairo",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, call{method: http.MethodPost, path: "/auth/login", device: device,
		body: loginRequest{Email: email, Password: "pw"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp loginResponse
	decodeBody(t, rec, &resp)
	return resp.Token, resp
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, call{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProductRoutes(t *testing.T) {
	e := newEnv(t)

	var all []models.Product
	rec := e.do(t, call{method: http.MethodGet, path: "/products"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &all)
	assert.Len(t, all, 2)

	var kids []models.Product
	rec = e.do(t, call{method: http.MethodGet, path: "/products?category=kids"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &kids)
	require.Len(t, kids, 1)
	assert.Equal(t, "k1", kids[0].ID)

	rec = e.do(t, call{method: http.MethodGet, path: "/products?category=women"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var hits []models.Product
	rec = e.do(t, call{method: http.MethodGet, path: "/products/search?q=LINEN"})
	decodeBody(t, rec, &hits)
	require.Len(t, hits, 1)

	rec = e.do(t, call{method: http.MethodGet, path: "/products/k1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, call{method: http.MethodGet, path: "/products/zzz"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGuestCartFlow(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, call{method: http.MethodGet, path: "/cart"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, call{method: http.MethodPost, path: "/cart/items", device: "d1",
		body: addItemRequest{ProductID: "m1", Quantity: 1}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr errorBody
	decodeBody(t, rec, &verr)
	assert.Equal(t, "Please select a size.", verr.Fields["size"])

	rec = e.do(t, call{method: http.MethodPost, path: "/cart/items", device: "d1",
		body: addItemRequest{ProductID: "m1", Size: "m", Quantity: 2}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lines []models.CartLine
	decodeBody(t, rec, &lines)
	require.Len(t, lines, 1)
	assert.Equal(t, "m1-M", lines[0].ID)
	assert.Equal(t, 450.0, lines[0].Price)

	rec = e.do(t, call{method: http.MethodPost, path: "/cart/items/m1-M/decrement", device: "d1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, call{method: http.MethodPost, path: "/cart/items/m1-M/decrement", device: "d1"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &lines)
	assert.Empty(t, lines)

	rec = e.do(t, call{method: http.MethodPost, path: "/cart/items", device: "d1",
		body: addItemRequest{ProductID: "k1", Quantity: 2}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, call{method: http.MethodPost, path: "/cart/items/k1/increment", device: "d1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var sum cart.Summary
	rec = e.do(t, call{method: http.MethodGet, path: "/cart/summary", device: "d1"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &sum)
	assert.Equal(t, 3, sum.Items)
	assert.True(t, sum.FreeShipping)

	rec = e.do(t, call{method: http.MethodGet, path: "/cart/suggestions", device: "d1"})
	var picks []models.Product
	decodeBody(t, rec, &picks)
	require.Len(t, picks, 1)
	assert.Equal(t, "m1", picks[0].ID)

	rec = e.do(t, call{method: http.MethodDelete, path: "/cart/items/k1", device: "d1"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &lines)
	assert.Empty(t, lines)

	rec = e.do(t, call{method: http.MethodGet, path: "/cart", device: "d2"})
	decodeBody(t, rec, &lines)
	assert.Empty(t, lines)
}

func TestAddOutOfStockProduct(t *testing.T) {
	e := newEnv(t)

	k1, ok := e.catalog.ByID("k1")
	require.True(t, ok)
	k1.Stock = 0
	require.NoError(t, e.catalog.Update(context.Background(), k1))

	rec := e.do(t, call{method: http.MethodPost, path: "/cart/items", device: "d1",
		body: addItemRequest{ProductID: "k1"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr errorBody
	decodeBody(t, rec, &verr)
	assert.Equal(t, "This product is out of stock.", verr.Fields["product_id"])

	rec = e.do(t, call{method: http.MethodPost, path: "/cart/items", device: "d1",
		body: addItemRequest{ProductID: "nope"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginMergesDeviceCart(t *testing.T) {
	e := newEnv(t)
	e.carts.carts["u-mona@example.com"] = []models.CartLine{
		{ID: "m1-M", Size: "M", Name: "Linen Shirt", Price: 450, Image: "m1.png", Quantity: 2},
		{ID: "m1-L", Size: "L", Name: "Linen Shirt", Price: 450, Image: "m1.png", Quantity: 1},
	}

	rec := e.do(t, call{method: http.MethodPost, path: "/cart/items", device: "d1",
		body: addItemRequest{ProductID: "m1", Size: "M", Quantity: 1}})
	require.Equal(t, http.StatusOK, rec.Code)

	token, resp := e.signIn(t, "mona@example.com", "d1")
	require.Len(t, resp.Cart, 2)
	assert.Equal(t, 3, resp.Cart[0].Quantity)
	assert.Equal(t, "m1-L", resp.Cart[1].ID)

	var lines []models.CartLine
	rec = e.do(t, call{method: http.MethodGet, path: "/cart", device: "d1", token: token})
	decodeBody(t, rec, &lines)
	assert.Equal(t, resp.Cart, lines)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, e.syncer.Flush(ctx))
	remote, _ := e.carts.GetCart(context.Background(), "u-mona@example.com")
	assert.Equal(t, lines, remote)

	rec = e.do(t, call{method: http.MethodPost, path: "/auth/logout", device: "d1", token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, call{method: http.MethodGet, path: "/cart", device: "d1", token: token})
	decodeBody(t, rec, &lines)
	assert.Empty(t, lines)
}

func TestLoginResponseDistinguishesEmptyCart(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, call{method: http.MethodPost, path: "/auth/signup", body: auth.SignUpInput{
		Name: "Mona", Email: "mona@example.com", Password: "pw", Phone: "0100", Address: "Cairo",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, call{method: http.MethodPost, path: "/auth/login", device: "d1",
		body: loginRequest{Email: "mona@example.com", Password: "pw"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cart":[]`)

	rec = e.do(t, call{method: http.MethodPost, path: "/auth/login",
		body: loginRequest{Email: "mona@example.com", Password: "pw"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cart":null`)
}

func TestAuthRoutes(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, call{method: http.MethodPost, path: "/auth/signup", body: auth.SignUpInput{Email: "x@example.com"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token, _ := e.signIn(t, "mona@example.com", "")

	rec = e.do(t, call{method: http.MethodPost, path: "/auth/signup", body: auth.SignUpInput{
		Name: "Again", Email: "MONA@example.com", Password: "pw", Phone: "1", Address: "2",
	}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, call{method: http.MethodPost, path: "/auth/login", body: loginRequest{Email: "mona@example.com", Password: "bad"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var me models.User
	rec = e.do(t, call{method: http.MethodGet, path: "/auth/me", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &me)
	assert.Equal(t, "mona@example.com", me.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = e.do(t, call{method: http.MethodPut, path: "/auth/me", token: token, body: models.Profile{Name: "Mona Z", Phone: "1", Address: "Giza"}})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &me)
	assert.Equal(t, "Giza", me.Address)

	rec = e.do(t, call{method: http.MethodGet, path: "/auth/me"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = e.do(t, call{method: http.MethodGet, path: "/auth/me", token: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderRoutes(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, call{method: http.MethodPost, path: "/orders/track", body: trackRequest{Email: "guest@example.com", OrderID: "ord-1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var view orderView
	decodeBody(t, rec, &view)
	assert.Equal(t, "Linen Shirt (x2)", view.Summary)

	rec = e.do(t, call{method: http.MethodPost, path: "/orders/track", body: trackRequest{Email: "guest@example.com"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, call{method: http.MethodPost, path: "/orders/track", body: trackRequest{Email: "other@example.com", OrderID: "ord-1"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, call{method: http.MethodGet, path: "/orders"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _ := e.signIn(t, "mona@example.com", "")
	rec = e.do(t, call{method: http.MethodGet, path: "/orders", token: token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, call{method: http.MethodGet, path: "/admin/orders"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _ := e.signIn(t, "boss@example.com", "")
	rec = e.do(t, call{method: http.MethodGet, path: "/admin/orders", token: token})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	e.users.promote("boss@example.com")

	rec = e.do(t, call{method: http.MethodPost, path: "/admin/products", token: token,
		body: models.ProductDraft{Name: "Hoodie", Price: 700, Category: models.CategoryMen}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr errorBody
	decodeBody(t, rec, &verr)
	assert.Contains(t, verr.Fields, "image")

	rec = e.do(t, call{method: http.MethodPost, path: "/admin/products", token: token,
		body: models.ProductDraft{Name: "Hoodie", Price: 700, Category: models.CategoryMen, ImageURLs: []string{"h.png"}}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Product
	decodeBody(t, rec, &created)
	assert.Equal(t, models.DefaultSizes(), created.Sizes)

	rec = e.do(t, call{method: http.MethodGet, path: "/products/" + created.ID})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, call{method: http.MethodPut, path: "/admin/products/" + created.ID, token: token,
		body: models.ProductDraft{Name: "Hoodie", Price: 650, Category: models.CategoryMen}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Product
	decodeBody(t, rec, &updated)
	assert.Equal(t, 650.0, updated.Price)
	assert.Equal(t, []string{"h.png"}, updated.ImageURLs)

	rec = e.do(t, call{method: http.MethodDelete, path: "/admin/products/" + created.ID, token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, call{method: http.MethodDelete, path: "/admin/products/" + created.ID, token: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, call{method: http.MethodPatch, path: "/admin/orders/ord-1/status", token: token, body: statusRequest{Status: "shipped"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var view orderView
	decodeBody(t, rec, &view)
	assert.Equal(t, models.OrderStatusShipped, view.Status)

	rec = e.do(t, call{method: http.MethodPatch, path: "/admin/orders/ord-1/status", token: token, body: statusRequest{Status: "lost"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, call{method: http.MethodGet, path: "/admin/sales?days=7", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		Days  []json.RawMessage `json:"days"`
		Total string            `json:"total"`
		Top   *struct {
			ID string `json:"id"`
		} `json:"top_product"`
	}
	decodeBody(t, rec, &report)
	assert.Len(t, report.Days, 7)
	assert.Equal(t, "900", report.Total)
	require.NotNil(t, report.Top)
	assert.Equal(t, "m1", report.Top.ID)

	rec = e.do(t, call{method: http.MethodGet, path: "/admin/sales?days=0", token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminMultipartUpload(t *testing.T) {
	e := newEnv(t)
	token, _ := e.signIn(t, "boss@example.com", "")
	e.users.promote("boss@example.com")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Cap"))
	require.NoError(t, mw.WriteField("price", "90"))
	require.NoError(t, mw.WriteField("category", "kids"))
	require.NoError(t, mw.WriteField("stock_quantity", "12"))
	require.NoError(t, mw.WriteField("sizes", `[{"size":"S","available":true}]`))
	part, err := mw.CreateFormFile("image", "cap.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Product
	decodeBody(t, rec, &p)
	assert.Equal(t, 12, p.Stock)
	require.Len(t, p.ImageURLs, 1)
	assert.True(t, strings.HasPrefix(p.ImageURLs[0], "/uploads/products/"))
	assert.True(t, strings.HasSuffix(p.ImageURLs[0], ".png"))
	assert.Equal(t, []models.SizeOption{{Size: "S", Available: true}}, p.Sizes)
}
