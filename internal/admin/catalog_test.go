package admin

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/backend"
	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/view"
)

var fixtures = map[string]string{
	"/campaigns": `{"data":[
		{"_id":"c1","title":"Clean Water","category":"Medical","status":"active","goalAmount":10000,"raisedAmount":2500,"endDate":"2025-06-01T00:00:00Z"},
		{"_id":"c2","title":"School Kits","category":"Education","status":"completed","goalAmount":5000,"raisedAmount":5000},
		{"_id":"c3","title":"Flood Relief","category":"Disaster Relief","status":"active","goalAmount":8000,"raisedAmount":1000}]}`,
	"/donations":   `{"data":[{"_id":"d1","donorName":"Asha","campaignTitle":"Clean Water","amount":1500.5,"paymentMethod":"upi","status":"success"}]}`,
	"/coupons":     `{"data":[{"_id":"k1","code":"SAVE10","type":"percentage","value":10,"partnerName":"Acme","status":"active"}]}`,
	"/blogs":       `{"data":[{"_id":"b1","title":"<b>Hope</b> rising","author":"Mira","category":"Stories","status":"published"}]}`,
	"/celebrities": `{"data":[{"_id":"s1","name":"Ravi","profession":"Actor","status":"active"}]}`,
	"/volunteers":  `{"data":[{"_id":"v1","name":"Lena","email":"lena@example.org","skills":["first aid","driving"],"status":"pending"}]}`,
	"/partners":    `[{"_id":"p1","name":"Acme","type":"corporate"}]`,
	"/queries":     `{"data":[{"_id":"q1","name":"Tom","subject":"Receipt","status":"open"}]}`,
}

type api struct {
	hits atomic.Int32
}

func newCatalog(t *testing.T, withCache bool) (*Catalog, *api) {
	t.Helper()
	a := &api{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.hits.Add(1)
		body, ok := fixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	var cache *backend.Cache
	if withCache {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		cache = backend.NewCache(rdb, time.Minute)
	}
	return NewCatalog(backend.NewClient(srv.URL, time.Second, nil), cache), a
}

type adminPrincipal struct{}

func (adminPrincipal) Token() string { return "tok" }
func (adminPrincipal) Role() string  { return shared.RoleAdmin }
func (adminPrincipal) Clear()        {}

func TestCatalogNames(t *testing.T) {
	c, _ := newCatalog(t, false)
	assert.Equal(t, []string{"blogs", "campaigns", "celebrities", "coupons", "donations", "partners", "queries", "volunteers"}, c.Names())
	assert.Len(t, c.Entries(), 8)
	_, ok := c.Lookup("nope")
	assert.False(t, ok)
}

func TestCatalogMountServesEveryListing(t *testing.T) {
	c, _ := newCatalog(t, false)
	templates, err := view.NewEngine()
	require.NoError(t, err)

	gated := 0
	gate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gated++
			next.ServeHTTP(w, r)
		})
	}
	r := chi.NewRouter()
	c.Mount(r, listing.Deps{
		Templates: templates,
		Principal: func(*http.Request) shared.Principal { return adminPrincipal{} },
	}, gate)

	for _, e := range c.Entries() {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/"+e.Name, nil))
		assert.Equal(t, http.StatusOK, rr.Code, e.Name)
		assert.Contains(t, rr.Body.String(), "<h1>"+e.Title+"</h1>", e.Name)
	}
	assert.Equal(t, 8, gated)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/donations/d1/delete", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "donations are not deletable")
}

func TestEntryExportRespectsState(t *testing.T) {
	c, _ := newCatalog(t, false)
	e, ok := c.Lookup("campaigns")
	require.True(t, ok)

	st := dataview.NewState()
	st.SetFilter("status", "active")
	var buf bytes.Buffer
	n, err := e.Export(context.Background(), &buf, "tok", shared.RoleAdmin, st)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"Title","Category","Goal","Raised","Progress","Status","Ends"`, lines[0])
	assert.Equal(t, `"Clean Water","Medical","10,000.00","2,500.00","25%","active","01 Jun 2025"`, lines[1])
}

func TestEntryExportStripsMarkup(t *testing.T) {
	c, _ := newCatalog(t, false)
	e, _ := c.Lookup("blogs")
	var buf bytes.Buffer
	_, err := e.Export(context.Background(), &buf, "tok", shared.RoleAdmin, dataview.NewState())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"Hope rising"`)
}

func TestEntryPrefetchWarmsCache(t *testing.T) {
	c, a := newCatalog(t, true)
	e, _ := c.Lookup("volunteers")
	ctx := context.Background()

	n, err := e.Prefetch(ctx, "service", shared.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = e.Prefetch(ctx, "another-admin", shared.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, a.hits.Load())
}

func TestCatalogPrefetchByName(t *testing.T) {
	c, _ := newCatalog(t, false)
	n, err := c.Prefetch(context.Background(), "campaigns", "service", shared.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = c.Prefetch(context.Background(), "sponsors", "service", shared.RoleAdmin)
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestEntryBrowser(t *testing.T) {
	c, _ := newCatalog(t, false)
	e, _ := c.Lookup("partners")
	m, err := e.Browser(context.Background(), "tok", shared.RoleAdmin)
	require.NoError(t, err)
	assert.Contains(t, m.View(), "Acme")
}
