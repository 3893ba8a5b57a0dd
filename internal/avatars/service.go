package avatars

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/monologue-app/monologue-backend/pkg/config"
	"github.com/monologue-app/monologue-backend/pkg/errors"
	"github.com/monologue-app/monologue-backend/pkg/logger"
	"github.com/monologue-app/monologue-backend/pkg/redis"
)

const (
	iconWidth  = 256
	iconHeight = 256
)

// ByteCache is the cache surface the derivation path needs. Satisfied by
// pkg/redis.Client; a nil cache disables remote caching without changing
// behavior.
type ByteCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	IconKey(sourceHash string) string
}

// Service derives square profile icons from account origin images.
type Service interface {
	Icon(ctx context.Context, originImage string) ([]byte, error)
}

type serviceImpl struct {
	media config.MediaConfig
	cache ByteCache
	logg  *logger.Logger
}

// NewService wires icon derivation. cache may be nil.
func NewService(media config.MediaConfig, cache ByteCache, logg *logger.Logger) Service {
	return &serviceImpl{media: media, cache: cache, logg: logg}
}

// Icon returns the 256x256 JPEG derived from the origin image. Derivation is
// deterministic per source, so results are memoized by the SHA-256 of the
// source bytes, first in Redis and then on disk. A missing or undecodable
// source fails the request; no fallback image is substituted.
func (s *serviceImpl) Icon(ctx context.Context, originImage string) ([]byte, error) {
	source, err := s.readSource(originImage)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(source)
	sourceHash := hex.EncodeToString(sum[:])

	if cached := s.fromCache(ctx, sourceHash); cached != nil {
		return cached, nil
	}
	if derived, err := os.ReadFile(s.derivedPath(sourceHash)); err == nil {
		s.toCache(ctx, sourceHash, derived)
		return derived, nil
	}

	derived, err := derive(source, s.media.IconQuality)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "deriving icon")
	}

	s.persistDerived(ctx, sourceHash, derived)
	s.toCache(ctx, sourceHash, derived)
	return derived, nil
}

func (s *serviceImpl) readSource(originImage string) ([]byte, error) {
	if originImage == "" {
		originImage = s.media.PlaceholderImage
	}

	data, err := os.ReadFile(s.resolve(originImage))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.CodeNotFound, "icon source not found")
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "reading icon source")
	}
	return data, nil
}

// resolve keeps absolute paths as-is and anchors everything else under the
// media root.
func (s *serviceImpl) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.media.Root, path)
}

func (s *serviceImpl) derivedPath(sourceHash string) string {
	return filepath.Join(s.media.Root, "cache", "icons", fmt.Sprintf("%s.jpg", sourceHash))
}

func (s *serviceImpl) persistDerived(ctx context.Context, sourceHash string, derived []byte) {
	path := s.derivedPath(sourceHash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("icon cache dir unavailable: %v", err))
		return
	}
	if err := os.WriteFile(path, derived, 0o644); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("icon cache write failed: %v", err))
	}
}

func (s *serviceImpl) fromCache(ctx context.Context, sourceHash string) []byte {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.GetBytes(ctx, s.cache.IconKey(sourceHash))
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(ctx, fmt.Sprintf("icon cache read failed: %v", err))
		}
		return nil
	}
	return data
}

func (s *serviceImpl) toCache(ctx context.Context, sourceHash string, derived []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.IconKey(sourceHash), derived, s.media.IconCacheTTL); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("icon cache store failed: %v", err))
	}
}

// derive crops the source to a centered square and scales to 256x256, then
// encodes JPEG at the configured quality.
func derive(source []byte, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(source), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}

	icon := imaging.Fill(img, iconWidth, iconHeight, imaging.Center, imaging.Lanczos)

	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, icon, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
