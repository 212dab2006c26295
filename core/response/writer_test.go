package response_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/relay/core/response"
)

func TestWriterSend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		write    func(w *response.Writer) error
		expected string
	}{
		{
			name:     "send",
			write:    func(w *response.Writer) error { return w.Send("Hello, World!") },
			expected: "Hello, World!",
		},
		{
			name:     "send_line",
			write:    func(w *response.Writer) error { return w.SendLine("hello") },
			expected: "hello\n",
		},
		{
			name:     "empty_string",
			write:    func(w *response.Writer) error { return w.Send("") },
			expected: "",
		},
		{
			name:     "utf8",
			write:    func(w *response.Writer) error { return w.Send("Hello, 世界! 🌍") },
			expected: "Hello, 世界! 🌍",
		},
		{
			name: "raw_bytes",
			write: func(w *response.Writer) error {
				_, err := w.Write([]byte{'o', 'k'})
				return err
			},
			expected: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			w := response.New(rec)

			require.NoError(t, tt.write(w))
			require.NoError(t, w.Close())

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.expected, rec.Body.String())
			assert.Equal(t, int64(len(tt.expected)), w.BytesWritten())
		})
	}
}

func TestWriterLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("starts open", func(t *testing.T) {
		t.Parallel()

		w := response.New(httptest.NewRecorder())
		assert.Equal(t, response.StateOpen, w.State())
		assert.False(t, w.Closed())
		assert.False(t, w.Written())
		assert.Equal(t, http.StatusOK, w.StatusCode())
	})

	t.Run("close sends pending status", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := response.New(rec)
		w.Status(http.StatusNoContent)

		require.NoError(t, w.Close())
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, rec.Flushed)
		assert.True(t, w.Written())
		assert.Equal(t, "closed", w.State().String())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := response.New(rec)
		require.NoError(t, w.Send("once"))

		require.NoError(t, w.Close())
		require.NoError(t, w.Close())
		assert.Equal(t, "once", rec.Body.String())
	})

	t.Run("writes after close fail", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := response.New(rec)
		require.NoError(t, w.Close())

		assert.ErrorIs(t, w.Send("late"), response.ErrResponseClosed)
		assert.ErrorIs(t, w.SendLine("late"), response.ErrResponseClosed)
		assert.ErrorIs(t, w.JSON(struct{ A int }{1}), response.ErrResponseClosed)
		n, err := w.Write([]byte("late"))
		assert.Zero(t, n)
		assert.ErrorIs(t, err, response.ErrResponseClosed)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("status after first write is ignored", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := response.New(rec)
		w.Status(http.StatusAccepted)
		require.NoError(t, w.Send("body"))
		w.Status(http.StatusTeapot)
		require.NoError(t, w.Close())

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, http.StatusAccepted, w.StatusCode())
	})

	t.Run("concurrent close", func(t *testing.T) {
		t.Parallel()

		w := response.New(httptest.NewRecorder())
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = w.Send("x")
				_ = w.Close()
			}()
		}
		wg.Wait()

		assert.True(t, w.Closed())
	})
}

func TestWriterJSON(t *testing.T) {
	t.Parallel()

	type user struct {
		Id   int
		Name string
	}

	t.Run("sets content type", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := response.New(rec)
		require.NoError(t, w.JSON(user{Id: 5, Name: "a"}))
		require.NoError(t, w.Close())

		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `{"Id":5,"Name":"a"}`, rec.Body.String())
	})

	t.Run("keeps caller content type", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := response.New(rec)
		w.Header().Set("Content-Type", "application/vnd.api+json")
		require.NoError(t, w.JSON(user{Id: 1}))

		assert.Equal(t, "application/vnd.api+json", rec.Header().Get("Content-Type"))
	})

	t.Run("rejects non record", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		w := response.New(rec)

		assert.ErrorIs(t, w.JSON(42), response.ErrNotRecord)
		assert.False(t, w.Written())
	})
}
