// Package transfer downloads remote artifacts to a staged file in fixed-size
// byte ranges, retrying each range with exponential backoff.
package transfer

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ereader-ota/otactl/channel"
	"github.com/ereader-ota/otactl/githubapi"
	"github.com/ereader-ota/otactl/retry"
)

const (
	DefaultChunkSize    uint64 = 10 * 1024 * 1024
	DefaultChunkTimeout        = 30 * time.Second
	DefaultMaxAttempts  uint   = 3
	DefaultBackoffBase         = time.Second
)

// ProgressFunc receives the bytes written so far and the artifact size.
type ProgressFunc func(downloaded, total uint64)

// Engine fetches one range at a time. It keeps no state between downloads.
type Engine struct {
	Fetcher      githubapi.RangeFetcher
	ChunkSize    uint64
	ChunkTimeout time.Duration
	// MaxAttempts counts the first try.
	MaxAttempts uint
	BackoffBase time.Duration
	Clock       retry.Clock
	Metrics     *Metrics
	Log         *zerolog.Logger
}

func NewEngine(fetcher githubapi.RangeFetcher, metrics *Metrics, log *zerolog.Logger) *Engine {
	return &Engine{
		Fetcher:      fetcher,
		ChunkSize:    DefaultChunkSize,
		ChunkTimeout: DefaultChunkTimeout,
		MaxAttempts:  DefaultMaxAttempts,
		BackoffBase:  DefaultBackoffBase,
		Clock:        retry.SystemClock,
		Metrics:      metrics,
		Log:          log,
	}
}

// Download writes desc to path, truncating any previous content. On failure
// the file holds exactly the chunks completed before the failing one.
func (e *Engine) Download(ctx context.Context, desc channel.ArtifactDescriptor, path string, onProgress ProgressFunc) error {
	if onProgress == nil {
		onProgress = func(uint64, uint64) {}
	}
	log := e.logger()
	chunkSize := e.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}

	file, err := os.Create(path)
	if err != nil {
		return &StagingError{Path: path, Op: "create", Err: err}
	}
	defer file.Close()

	total := desc.Size
	log.Info().Str("artifact", desc.Name).Uint64("size", total).Str("path", path).Msg("Starting download")
	onProgress(0, total)

	var offset uint64
	for offset < total {
		end := offset + chunkSize - 1
		if end > total-1 {
			end = total - 1
		}
		data, err := e.fetchChunk(ctx, desc.URL, offset, end)
		if err != nil {
			return err
		}
		if _, err := file.Write(data); err != nil {
			return &StagingError{Path: path, Op: "write", Err: err}
		}
		e.Metrics.addBytes(len(data))
		offset += uint64(len(data))
		log.Debug().Uint64("downloaded", offset).Uint64("total", total).Msg("Chunk written")
		onProgress(offset, total)
	}

	if err := file.Sync(); err != nil {
		return &StagingError{Path: path, Op: "sync", Err: err}
	}
	if err := file.Close(); err != nil {
		return &StagingError{Path: path, Op: "close", Err: err}
	}
	log.Info().Str("artifact", desc.Name).Str("path", path).Msg("Download complete")
	return nil
}

func (e *Engine) fetchChunk(ctx context.Context, url string, start, end uint64) ([]byte, error) {
	maxAttempts := e.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := retry.NewBackoff(maxAttempts-1, e.BackoffBase)
	if e.Clock.After != nil {
		backoff.Clock = e.Clock
	}
	log := e.logger()
	span := end - start + 1

	for {
		data, err := e.attempt(ctx, url, start, end)
		if err == nil {
			if uint64(len(data)) > span {
				return nil, &ChunkError{Start: start, End: end, Attempts: backoff.Retries() + 1, Err: ErrRangeNotHonored}
			}
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		attempt := backoff.Retries() + 1
		if delay, ok := backoff.NextBackoffDuration(ctx); ok {
			log.Warn().Err(err).
				Uint64("start", start).
				Uint64("end", end).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("Chunk download failed, retrying")
		}
		if !backoff.Backoff(ctx) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error().Err(err).Uint64("start", start).Uint64("end", end).Int("attempts", attempt).Msg("Chunk download failed")
			return nil, &ChunkError{Start: start, End: end, Attempts: attempt, Err: err}
		}
	}
}

func (e *Engine) attempt(ctx context.Context, url string, start, end uint64) ([]byte, error) {
	timeout := e.ChunkTimeout
	if timeout == 0 {
		timeout = DefaultChunkTimeout
	}
	chunkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	began := e.now()
	data, err := e.Fetcher.FetchRange(chunkCtx, url, start, end)
	if err == nil && len(data) == 0 {
		err = errEmptyChunk
	}
	if err != nil && chunkCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		err = errors.Wrapf(err, "chunk request timed out after %s", timeout)
	}
	e.Metrics.observeAttempt(err, e.now().Sub(began).Seconds())
	return data, err
}

func (e *Engine) now() time.Time {
	if e.Clock.Now == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e *Engine) logger() *zerolog.Logger {
	if e.Log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return e.Log
}
