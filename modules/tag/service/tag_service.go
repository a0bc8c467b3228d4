package service

import (
	"context"
	"strings"
	"time"

	"livestream-api/core/cache"
	"livestream-api/core/constants"
	"livestream-api/core/errors"
	"livestream-api/core/logger"
	"livestream-api/core/utils"
	"livestream-api/modules/tag/dto"
	"livestream-api/modules/tag/repository"

	"github.com/gosimple/slug"
)

type TagServiceInterface interface {
	ListTags(ctx context.Context) (*dto.TagsResponse, *errors.AppError)
	ResolveIDsByName(ctx context.Context, name string) ([]int64, *errors.AppError)
}

type TagService struct {
	repo  repository.TagRepositoryInterface
	cache cache.Cache
	ttl   time.Duration
}

// NewTagService builds the catalog service. c may be nil, in which case every
// call reads Postgres.
func NewTagService(repo repository.TagRepositoryInterface, c cache.Cache, ttl time.Duration) *TagService {
	return &TagService{repo: repo, cache: c, ttl: ttl}
}

func (s *TagService) ListTags(ctx context.Context) (*dto.TagsResponse, *errors.AppError) {
	var cached dto.TagsResponse
	if s.cacheGet(ctx, constants.RedisKeyTagCatalog, &cached) {
		return &cached, nil
	}

	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to get tags", err)
	}

	resp := &dto.TagsResponse{Tags: make([]dto.TagResponse, 0, len(tags))}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, dto.TagResponse{ID: t.ID, Name: t.Name})
	}
	s.cacheSet(ctx, constants.RedisKeyTagCatalog, resp)
	return resp, nil
}

// ResolveIDsByName maps a tag name to catalog ids. An unknown name yields an
// empty slice, not an error.
func (s *TagService) ResolveIDsByName(ctx context.Context, name string) ([]int64, *errors.AppError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []int64{}, nil
	}

	key := tagNameKey(name)
	var ids []int64
	if s.cacheGet(ctx, key, &ids) {
		return ids, nil
	}

	ids, err := s.repo.FindIDsByName(ctx, name)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to resolve tag", err)
	}
	s.cacheSet(ctx, key, ids)
	return ids, nil
}

// tagNameKey keeps the slug readable in Redis; the fingerprint of the exact
// name keeps distinct names that slug alike apart.
func tagNameKey(name string) string {
	return constants.RedisKeyTagByName + slug.Make(name) + ":" + utils.Fingerprint(name)
}

func (s *TagService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.Warn("TagService:Cache:Get:Error", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *TagService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		logger.Warn("TagService:Cache:Set:Error", "key", key, "error", err)
	}
}
