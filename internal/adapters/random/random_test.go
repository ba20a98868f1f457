package random_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nicolelin19/mealmax/internal/adapters/random"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLocal(t *testing.T) {
	Convey("Given two local sources with the same seed", t, func() {
		a := random.NewLocalWithSeed(7)
		b := random.NewLocalWithSeed(7)

		Convey("Then they should yield the same values in [0,1)", func() {
			for i := 0; i < 20; i++ {
				va, errA := a.Float64(context.Background())
				vb, errB := b.Float64(context.Background())
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(va, ShouldEqual, vb)
				So(va, ShouldBeGreaterThanOrEqualTo, 0)
				So(va, ShouldBeLessThan, 1)
			}
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := a.Float64(ctx)

			Convey("Then the context error should be returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a crypto seeded source", t, func() {
		l, err := random.NewLocal()

		Convey("Then it should be usable", func() {
			So(err, ShouldBeNil)
			_, err = l.Float64(context.Background())
			So(err, ShouldBeNil)
		})
	})
}

func TestFixed(t *testing.T) {
	Convey("Given a fixed source", t, func() {
		f := random.NewFixed(0.1, 0.9)

		Convey("Then it should replay values and repeat the last", func() {
			for _, want := range []float64{0.1, 0.9, 0.9} {
				v, err := f.Float64(context.Background())
				So(err, ShouldBeNil)
				So(v, ShouldEqual, want)
			}
		})

		Convey("When it has no values", func() {
			v, err := random.NewFixed().Float64(context.Background())

			Convey("Then it should yield zero", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 0.0)
			})
		})
	})
}

func TestRandomOrg(t *testing.T) {
	Convey("Given a random.org compatible server", t, func() {
		body := "0.37\n"
		status := http.StatusOK
		delay := time.Duration(0)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if delay > 0 {
				time.Sleep(delay)
			}
			w.WriteHeader(status)
			_, _ = fmt.Fprint(w, body)
		}))
		defer srv.Close()

		Convey("When it returns a valid fraction", func() {
			v, err := random.NewRandomOrg(random.WithURL(srv.URL)).Float64(context.Background())

			Convey("Then it should be parsed", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 0.37)
			})
		})

		Convey("When it returns garbage", func() {
			body = "invalid_number"
			_, err := random.NewRandomOrg(random.WithURL(srv.URL)).Float64(context.Background())

			Convey("Then an invalid response error should be returned", func() {
				So(errors.Is(err, random.ErrUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "invalid response")
			})
		})

		Convey("When it returns a value out of range", func() {
			body = "1.5"
			_, err := random.NewRandomOrg(random.WithURL(srv.URL)).Float64(context.Background())

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, random.ErrUnavailable), ShouldBeTrue)
			})
		})

		Convey("When it answers with a server error", func() {
			status = http.StatusServiceUnavailable
			_, err := random.NewRandomOrg(random.WithURL(srv.URL)).Float64(context.Background())

			Convey("Then the request should be reported as failed", func() {
				So(errors.Is(err, random.ErrUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "failed")
			})
		})

		Convey("When it is slower than the timeout", func() {
			delay = 200 * time.Millisecond
			src := random.NewRandomOrg(random.WithURL(srv.URL), random.WithTimeout(20*time.Millisecond))
			_, err := src.Float64(context.Background())

			Convey("Then a timeout error should be returned", func() {
				So(errors.Is(err, random.ErrUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "timed out")
			})
		})
	})
}

type flakySource struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakySource) Float64(context.Context) (float64, error) {
	if f.calls.Add(1) <= f.failures {
		return 0, random.ErrUnavailable
	}
	return 0.5, nil
}

func TestWithRetry(t *testing.T) {
	Convey("Given a source that fails twice", t, func() {
		inner := &flakySource{failures: 2}

		Convey("When wrapped with three attempts", func() {
			v, err := random.WithRetry(inner, nil, 3, time.Millisecond).Float64(context.Background())

			Convey("Then the third attempt should succeed", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 0.5)
				So(inner.calls.Load(), ShouldEqual, int32(3))
			})
		})

		Convey("When wrapped with two attempts", func() {
			_, err := random.WithRetry(inner, nil, 2, time.Millisecond).Float64(context.Background())

			Convey("Then the last error should be returned", func() {
				So(errors.Is(err, random.ErrUnavailable), ShouldBeTrue)
				So(inner.calls.Load(), ShouldEqual, int32(2))
			})
		})

		Convey("When the context is cancelled during backoff", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := random.WithRetry(inner, nil, 3, time.Hour).Float64(ctx)

			Convey("Then the context error should be returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
