package graphqlclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/resilience"
	"github.com/shreyasgm/atlas-router/internal/resilience/breaker"
	"github.com/shreyasgm/atlas-router/internal/resilience/budget"
)

func TestClient_Execute_SuccessConsumesBudgetAndClosesBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(graphqlResponse{Data: map[string]any{"ok": true}})
	}))
	defer srv.Close()

	br := breaker.New(3, time.Second)
	bt := budget.New(5, time.Minute)
	c := New(srv.URL, nil, br, bt, 2, 10*time.Millisecond, nil)

	data, err := c.Execute(context.Background(), "{ ok }", nil, "s1")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"ok": true}, data)
	require.Equal(t, 4, bt.Remaining("s1"))
}

func TestClient_Execute_RetriesOnTransientThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(graphqlResponse{Data: map[string]any{"ok": true}})
	}))
	defer srv.Close()

	br := breaker.New(5, time.Second)
	c := New(srv.URL, nil, br, nil, 2, time.Millisecond, nil)

	data, err := c.Execute(context.Background(), "{ ok }", nil, "")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"ok": true}, data)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Execute_RetryBoundIsOnePlusMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	br := breaker.New(100, time.Second)
	c := New(srv.URL, nil, br, nil, 3, time.Millisecond, nil)

	_, err := c.Execute(context.Background(), "{ ok }", nil, "")
	require.Error(t, err)
	require.Equal(t, int32(4), atomic.LoadInt32(&calls), "at most 1+maxRetries requests")
}

func TestClient_Execute_PermanentFailureDoesNotRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, nil, breaker.New(5, time.Second), nil, 3, time.Millisecond, nil)

	_, err := c.Execute(context.Background(), "{ ok }", nil, "")
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Execute_CircuitOpenFailsFast(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	br := breaker.New(1, time.Hour)
	br.RecordFailure()
	require.True(t, br.IsOpen())

	c := New(srv.URL, nil, br, nil, 2, time.Millisecond, nil)
	_, err := c.Execute(context.Background(), "{ ok }", nil, "")

	var circuitErr *resilience.CircuitOpenError
	require.ErrorAs(t, err, &circuitErr)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_Execute_BudgetExhaustedFailsFast(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	bt := budget.New(0, time.Minute)
	c := New(srv.URL, nil, breaker.New(5, time.Second), bt, 2, time.Millisecond, nil)

	_, err := c.Execute(context.Background(), "{ ok }", nil, "")

	var budgetErr *resilience.BudgetExhaustedError
	require.ErrorAs(t, err, &budgetErr)
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_Execute_GraphQLErrorsWithNoDataIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(graphqlResponse{Errors: []graphqlError{{Message: "field not found"}}})
	}))
	defer srv.Close()

	c := New(srv.URL, nil, breaker.New(5, time.Second), nil, 2, time.Millisecond, nil)
	_, err := c.Execute(context.Background(), "{ bogus }", nil, "")
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
