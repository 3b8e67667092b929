package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"listing-scout/config"
)

const modernSearchPage = `<html><body>
<ol>
  <li><a class="posting-title" href="/doc/1.html"><span>Fuji X100V</span></a></li>
  <li><a class="posting-title" href="/doc/2.html"><span>X100F body</span></a></li>
  <li><a class="posting-title" href="/doc/3.html"><span>Camera bag</span></a></li>
</ol>
</body></html>`

const gallerySearchPage = `<html><body>
<ul>
  <li class="cl-static-search-result"><a href="/doc/1.html">Fuji X100V</a></li>
  <li class="cl-static-search-result"><a href="/doc/2.html">X100F body</a></li>
</ul>
</body></html>`

const legacySearchPage = `<html><body>
<ul>
  <li class="result-row">
    <p class="result-info"><a class="result-title" href="/doc/1.html">Fuji X100V</a></p>
  </li>
  <li class="result-row">
    <p class="result-info"><a class="result-title" href="/doc/2.html">X100F body</a></p>
  </li>
</ul>
</body></html>`

func detailPage(title, price, body string) string {
	return fmt.Sprintf(`<html><body>
<h1 class="postingtitle"><span id="titletextonly">%s</span> <span class="price">%s</span></h1>
<section id="postingbody">%s<div class="print-information">print this page</div></section>
</body></html>`, title, price, body)
}

func newTestFetcher(t *testing.T, mux *http.ServeMux) *Fetcher {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.Config{BaseURL: srv.URL, FetchDelayMS: 0}
	return New(cfg, zap.NewNop().Sugar())
}

func TestFetch_ModernLayout(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/sss", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "fujifilm x100", r.URL.Query().Get("query"))
		fmt.Fprint(w, modernSearchPage)
	})
	mux.HandleFunc("/doc/1.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("Fuji X100V", "$900", "Barely used, comes with box."))
	})
	mux.HandleFunc("/doc/2.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("X100F body", "$650", "Some wear."))
	})
	mux.HandleFunc("/doc/3.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("Camera bag", "$40", "Fits small mirrorless."))
	})

	f := newTestFetcher(t, mux)

	listings, err := f.Fetch(context.Background(), "fujifilm x100")
	require.NoError(t, err)
	require.Len(t, listings, 3)

	require.Equal(t, "Fuji X100V", listings[0].Title)
	require.Equal(t, "$900", listings[0].Price)
	require.Equal(t, "Barely used, comes with box.", listings[0].Description)
	require.Contains(t, listings[0].URL, "/doc/1.html")
	require.Empty(t, listings[0].Err)

	require.Equal(t, "X100F body", listings[1].Title)
	require.Equal(t, "Camera bag", listings[2].Title)
}

func TestFetch_GalleryLayoutFallback(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/sss", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gallerySearchPage)
	})
	mux.HandleFunc("/doc/1.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("Fuji X100V", "$900", "desc"))
	})
	mux.HandleFunc("/doc/2.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("X100F body", "$650", "desc"))
	})

	f := newTestFetcher(t, mux)

	listings, err := f.Fetch(context.Background(), "fujifilm x100")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, "Fuji X100V", listings[0].Title)
}

func TestFetch_LegacyLayoutFallback(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/sss", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, legacySearchPage)
	})
	mux.HandleFunc("/doc/1.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("Fuji X100V", "$900", "desc"))
	})
	mux.HandleFunc("/doc/2.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("X100F body", "$650", "desc"))
	})

	f := newTestFetcher(t, mux)

	listings, err := f.Fetch(context.Background(), "fujifilm x100")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, "Fuji X100V", listings[0].Title)
	require.Contains(t, listings[1].URL, "/doc/2.html")
}

func TestFetch_DetailFailureRecordedPerListing(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/sss", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modernSearchPage)
	})
	mux.HandleFunc("/doc/1.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("Fuji X100V", "$900", "desc"))
	})
	mux.HandleFunc("/doc/2.html", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	})
	mux.HandleFunc("/doc/3.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("Camera bag", "$40", "desc"))
	})

	f := newTestFetcher(t, mux)

	listings, err := f.Fetch(context.Background(), "fujifilm x100")
	require.NoError(t, err)
	require.Len(t, listings, 3)

	require.Empty(t, listings[0].Err)
	require.NotEmpty(t, listings[1].Err)
	require.Contains(t, listings[1].URL, "/doc/2.html")
	require.Empty(t, listings[2].Err)
	require.Equal(t, "Camera bag", listings[2].Title)
}

func TestFetch_SearchPageFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/sss", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	})

	f := newTestFetcher(t, mux)

	_, err := f.Fetch(context.Background(), "fujifilm x100")
	require.Error(t, err)
}

func TestFetch_NoResults(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/sss", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>Nothing found.</p></body></html>")
	})

	f := newTestFetcher(t, mux)

	listings, err := f.Fetch(context.Background(), "fujifilm x100")
	require.NoError(t, err)
	require.Empty(t, listings)
}

func TestSearchURL(t *testing.T) {
	t.Parallel()

	f := New(&config.Config{BaseURL: "https://sfbay.craigslist.org"}, zap.NewNop().Sugar())
	require.Equal(t, "https://sfbay.craigslist.org/search/sss?query=fujifilm+x100", f.SearchURL("fujifilm x100"))
}

func TestFetch_SameTermTwice(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/sss", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, gallerySearchPage)
	})
	mux.HandleFunc("/doc/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailPage("Fuji X100V", "$900", "desc"))
	})

	f := newTestFetcher(t, mux)

	// Two products can share a search term; the second pass must not be
	// rejected as a revisit.
	first, err := f.Fetch(context.Background(), "fujifilm x100")
	require.NoError(t, err)
	second, err := f.Fetch(context.Background(), "fujifilm x100")
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
}
