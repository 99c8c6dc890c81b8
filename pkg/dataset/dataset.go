package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gdpdash/gdpdash/internal/utils"
	"github.com/hashicorp/go-retryablehttp"
)

// Dataset is the process-wide, read-only state built once at startup.
type Dataset struct {
	Source string
	Wide   *WideTable
	Tidy   *TidyTable
	Bounds Bounds
	Ticks  []int
}

// New builds the tidy table, bounds and slider ticks from a cleaned wide table.
func New(source string, wide *WideTable) *Dataset {
	bounds := wide.Bounds()
	return &Dataset{
		Source: source,
		Wide:   wide,
		Tidy:   wide.Tidy(),
		Bounds: bounds,
		Ticks:  bounds.Ticks(DefaultTickStep),
	}
}

// Load reads the CSV at source, which is a local path or an http(s) URL, and
// builds the Dataset. Any parse failure is returned as is; callers treat it as fatal.
func Load(ctx context.Context, source string, opts ReadOptions) (*Dataset, error) {
	start := time.Now()

	rc, err := open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	wide, err := ReadWide(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}

	ds := New(source, wide)
	utils.Log.Debugf("[dataset] loaded %s: %d countries, years %d-%d, %d records in %s",
		source, len(wide.Countries), ds.Bounds.MinYear, ds.Bounds.MaxYear, ds.Tidy.Len(), time.Since(start))
	return ds, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isRemote(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening dataset: %w", err)
		}
		return f, nil
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("building dataset request: %w", err)
	}
	utils.Log.Debugf("[dataset] fetching %s", source)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching dataset: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
