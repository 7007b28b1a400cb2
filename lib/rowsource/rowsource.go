package rowsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/artie-labs/bulksync/lib/awslib"
	"github.com/artie-labs/bulksync/lib/bulk"
	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/gcslib"
	"github.com/artie-labs/bulksync/lib/retry"
	"github.com/artie-labs/bulksync/lib/typing"
)

const (
	defaultConcurrency = 4

	openMaxAttempts  = 3
	openJitterBaseMs = 250
	openJitterMaxMs  = 2_000
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type Opener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// decodeError marks malformed input, reading the object again will not help.
type decodeError struct {
	err error
}

func (d decodeError) Error() string {
	return d.err.Error()
}

func (d decodeError) Unwrap() error {
	return d.err
}

// Loader opens local files, s3:// and gs:// objects. Object storage clients are only created when a path needs them.
type Loader struct {
	s3  *awslib.S3Client
	gcs *gcslib.GCSClient
}

func NewLoader(ctx context.Context, input config.Input) (*Loader, error) {
	loader := &Loader{}
	for _, path := range input.Paths {
		switch {
		case strings.HasPrefix(path, "s3://") && loader.s3 == nil:
			cfg, err := awslib.NewConfig(ctx, input.AWS)
			if err != nil {
				return nil, fmt.Errorf("failed to build aws config: %w", err)
			}
			client := awslib.NewS3Client(cfg)
			loader.s3 = &client
		case strings.HasPrefix(path, "gs://") && loader.gcs == nil:
			client, err := gcslib.NewGCSClient(ctx, input.GCP)
			if err != nil {
				return nil, err
			}
			loader.gcs = &client
		}
	}

	return loader, nil
}

func (l *Loader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(path, "s3://"):
		if l.s3 == nil {
			return nil, fmt.Errorf("no s3 client configured for %q", path)
		}
		return l.s3.Open(ctx, path)
	case strings.HasPrefix(path, "gs://"):
		if l.gcs == nil {
			return nil, fmt.Errorf("no gcs client configured for %q", path)
		}
		return l.gcs.Open(ctx, path)
	default:
		return os.Open(strings.TrimPrefix(path, "file://"))
	}
}

func (l *Loader) Close() error {
	if l.gcs != nil {
		return l.gcs.Close()
	}
	return nil
}

// Decode reads newline delimited JSON objects. Integers are kept as int64 and other numbers as exact decimals.
func Decode(reader io.Reader) ([]map[string]any, error) {
	decoder := jsonAPI.NewDecoder(reader)
	decoder.UseNumber()

	var records []map[string]any
	for decoder.More() {
		var record map[string]any
		if err := decoder.Decode(&record); err != nil {
			return nil, decodeError{fmt.Errorf("failed to decode record %d: %w", len(records), err)}
		}

		if record == nil {
			return nil, decodeError{fmt.Errorf("record %d is not a JSON object", len(records))}
		}

		for key, value := range record {
			number, ok := value.(json.Number)
			if !ok {
				continue
			}

			parsed, err := typing.ParseJSONNumber(number)
			if err != nil {
				return nil, decodeError{fmt.Errorf("record %d, field %q: %w", len(records), key, err)}
			}
			record[key] = parsed
		}

		records = append(records, record)
	}

	return records, nil
}

func isRetryableErr(err error) bool {
	var decodeErr decodeError
	switch {
	case errors.As(err, &decodeErr),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		awslib.IsNotFound(err),
		gcslib.IsNotFound(err):
		return false
	default:
		return true
	}
}

func load(ctx context.Context, opener Opener, path string) ([]map[string]any, error) {
	retryCfg := retry.NewRetryConfig(retry.NewRetryConfigArgs{
		JitterBaseMs:   openJitterBaseMs,
		JitterMaxMs:    openJitterMaxMs,
		MaxAttempts:    openMaxAttempts,
		IsRetryableErr: isRetryableErr,
	})

	return retry.WithRetries(retryCfg, func(attempt int, _ error) ([]map[string]any, error) {
		if attempt > 0 {
			slog.Info("Retrying input", slog.String("path", path), slog.Int("attempt", attempt))
		}

		reader, err := opener.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		defer reader.Close()

		return Decode(reader)
	})
}

// LoadAll reads every path concurrently and concatenates the records in path order.
func LoadAll(ctx context.Context, opener Opener, paths []string, concurrency int) (*bulk.Rows, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([][]map[string]any, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for i, path := range paths {
		group.Go(func() error {
			records, err := load(groupCtx, opener, path)
			if err != nil {
				return fmt.Errorf("failed to load %q: %w", path, err)
			}

			slog.Debug("Loaded input", slog.String("path", path), slog.Int("records", len(records)))
			results[i] = records
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var records []map[string]any
	for _, result := range results {
		records = append(records, result...)
	}

	return bulk.RowsFromMaps(records), nil
}
