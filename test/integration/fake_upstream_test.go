package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"supply-desk/internal/model"
)

const (
	gauzeBarcode    = "6291041500213"
	existingOrderID = 500
	existingLineID  = 9001
)

// fakeUpstream imitates the distributor API the order desk talks to.
type fakeUpstream struct {
	mu      sync.Mutex
	nextID  int64
	orders  []model.OrderSummary
	created []url.Values
	updated map[int64]url.Values
}

func newFakeUpstream(t *testing.T) (*fakeUpstream, *httptest.Server) {
	t.Helper()

	f := &fakeUpstream{
		nextID:  900,
		orders:  []model.OrderSummary{{ID: existingOrderID, Status: model.OrderStatusPending, DoctorID: 3, UserType: "Sales"}},
		updated: make(map[int64]url.Values),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/self", f.me)
	mux.HandleFunc("GET /products/all/brief", f.products)
	mux.HandleFunc("GET /doctors", f.doctors)
	mux.HandleFunc("GET /orders", f.listOrders)
	mux.HandleFunc("GET /orders/{id}", f.getOrder)
	mux.HandleFunc("POST /orders", f.createOrder)
	mux.HandleFunc("POST /orders/{id}/update", f.updateOrder)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

// addOrder simulates an order placed from another dashboard session.
func (f *fakeUpstream) addOrder(userType string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.orders = append(f.orders, model.OrderSummary{ID: id, Status: model.OrderStatusPending, DoctorID: 3, UserType: userType})
	return id
}

func (f *fakeUpstream) createdForms() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.created...)
}

func (f *fakeUpstream) updatedForm(id int64) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated[id]
}

func (f *fakeUpstream) me(w http.ResponseWriter, r *http.Request) {
	writeUpstream(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "ok",
		"data": model.User{
			ID:       7,
			FullName: "Sara Rep",
			Email:    "sara@example.com",
			UserType: "Sales",
		},
	})
}

func (f *fakeUpstream) products(w http.ResponseWriter, r *http.Request) {
	writeUpstream(w, http.StatusOK, map[string]any{
		"success": true,
		"data": []model.ProductBrief{
			{ID: 11, Name: "Sterile Gauze 10x10", Price: "12.75", Barcode: gauzeBarcode, Slug: "gauze-10"},
			{ID: 12, Name: "Nitrile Gloves M", Price: "4", Slug: "gloves-m"},
		},
	})
}

func (f *fakeUpstream) doctors(w http.ResponseWriter, r *http.Request) {
	writeUpstream(w, http.StatusOK, []model.Doctor{
		{ID: 3, Name: "Dr. Lina Haddad", Phone: "0790000000", Address: "Amman"},
	})
}

func (f *fakeUpstream) listOrders(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	orders := append([]model.OrderSummary(nil), f.orders...)
	f.mu.Unlock()

	writeUpstream(w, http.StatusOK, map[string]any{"success": true, "data": orders})
}

func (f *fakeUpstream) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if id != existingOrderID {
		writeUpstream(w, http.StatusNotFound, map[string]any{"success": false, "message": "order not found"})
		return
	}

	writeUpstream(w, http.StatusOK, model.OrderDetail{
		Order: model.OrderSummary{
			ID:        existingOrderID,
			Status:    model.OrderStatusPending,
			DoctorID:  3,
			Discount:  "0",
			TotalPaid: "5",
		},
		CartProducts: []model.CartProduct{{
			ID:           existingLineID,
			ProductID:    11,
			Quantity:     1,
			ProductPrice: "12.75",
			Total:        "12.75",
			Product:      &model.ProductRef{ID: 11, Name: "Sterile Gauze 10x10", Price: "12.75"},
		}},
		Total: "12.75",
	})
}

func (f *fakeUpstream) createOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeUpstream(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.created = append(f.created, r.MultipartForm.Value)
	f.orders = append(f.orders, model.OrderSummary{ID: id, Status: model.OrderStatusPending, UserType: "Sales"})
	f.mu.Unlock()

	writeUpstream(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]int64{"id": id}})
}

func (f *fakeUpstream) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeUpstream(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}

	f.mu.Lock()
	f.updated[id] = r.MultipartForm.Value
	f.mu.Unlock()

	writeUpstream(w, http.StatusOK, map[string]any{"success": true, "message": "updated"})
}

func writeUpstream(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
