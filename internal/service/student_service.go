package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/observability"
	"github.com/noah-isme/student-records-api/internal/repository"
)

// ErrStudentNotFound indicates no record matches the requested academic ID.
var ErrStudentNotFound = errors.New("student not found")

// ErrDuplicateAcademicID indicates a create collided with an existing academic ID.
var ErrDuplicateAcademicID = errors.New("student with that academic id already exists")

const listCacheKey = "students:all:v1"

// StudentService orchestrates student record use cases.
type StudentService interface {
	Create(ctx context.Context, req dto.StudentRequest) (dto.StudentResponse, error)
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Get(ctx context.Context, academicID string) (dto.StudentResponse, error)
	Update(ctx context.Context, academicID string, req dto.StudentRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, academicID string) (dto.StudentResponse, error)
}

type studentService struct {
	repo      repository.StudentRepository
	validator *validator.Validate
	cache     *redis.Client
	ttl       time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewStudentService constructs the student service. The cache client may be
// nil; every operation behaves identically without it.
func NewStudentService(repo repository.StudentRepository, validator *validator.Validate, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &studentService{
		repo:      repo,
		validator: validator,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.With().Str("component", "student_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/student-records-api/internal/service/student"),
	}
}

func (s *studentService) Create(ctx context.Context, req dto.StudentRequest) (dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.create")
	defer span.End()

	req = normalizeRequest(req)
	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		Name:       req.Name,
		Email:      req.Email,
		AcademicID: req.AcademicID,
	}
	span.SetAttributes(attribute.String("student.academic_id", student.AcademicID))

	created, err := s.repo.Create(ctx, student)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "duplicate academic id")
			observability.StudentOperations().WithLabelValues("create", "conflict").Inc()
			return dto.StudentResponse{}, ErrDuplicateAcademicID
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.StudentOperations().WithLabelValues("create", "error").Inc()
		return dto.StudentResponse{}, err
	}

	s.invalidate(ctx, created.AcademicID)
	observability.StudentOperations().WithLabelValues("create", "ok").Inc()
	s.logger.Info().Uint("id", created.ID).Str("academic_id", created.AcademicID).Msg("student created")

	return dto.NewStudentResponse(created), nil
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.list")
	defer span.End()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, listCacheKey).Result(); err == nil && cached != "" {
			var responses []dto.StudentResponse
			if err := json.Unmarshal([]byte(cached), &responses); err == nil {
				observability.StudentOperations().WithLabelValues("list", "cache_hit").Inc()
				return responses, nil
			}
		}
	}

	students, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		observability.StudentOperations().WithLabelValues("list", "error").Inc()
		return nil, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}

	s.cacheSet(ctx, listCacheKey, responses)
	observability.StudentOperations().WithLabelValues("list", "ok").Inc()

	return responses, nil
}

func (s *studentService) Get(ctx context.Context, academicID string) (dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.get")
	defer span.End()

	academicID = strings.TrimSpace(academicID)
	span.SetAttributes(attribute.String("student.academic_id", academicID))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, recordCacheKey(academicID)).Result(); err == nil && cached != "" {
			var response dto.StudentResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				observability.StudentOperations().WithLabelValues("get", "cache_hit").Inc()
				return response, nil
			}
		}
	}

	student, err := s.repo.GetByAcademicID(ctx, academicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.StudentOperations().WithLabelValues("get", "not_found").Inc()
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		observability.StudentOperations().WithLabelValues("get", "error").Inc()
		return dto.StudentResponse{}, err
	}

	response := dto.NewStudentResponse(student)
	s.cacheSet(ctx, recordCacheKey(academicID), response)
	observability.StudentOperations().WithLabelValues("get", "ok").Inc()

	return response, nil
}

// Update overwrites name and email. The academic ID in the payload is ignored;
// the column is immutable and the path parameter is authoritative.
func (s *studentService) Update(ctx context.Context, academicID string, req dto.StudentRequest) (dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.update")
	defer span.End()

	academicID = strings.TrimSpace(academicID)
	span.SetAttributes(attribute.String("student.academic_id", academicID))

	req = normalizeRequest(req)
	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.StudentResponse{}, err
	}

	student, err := s.repo.Update(ctx, academicID, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.StudentOperations().WithLabelValues("update", "not_found").Inc()
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.StudentOperations().WithLabelValues("update", "error").Inc()
		return dto.StudentResponse{}, err
	}

	s.invalidate(ctx, academicID)
	observability.StudentOperations().WithLabelValues("update", "ok").Inc()
	s.logger.Info().Uint("id", student.ID).Str("academic_id", academicID).Msg("student updated")

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Delete(ctx context.Context, academicID string) (dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.delete")
	defer span.End()

	academicID = strings.TrimSpace(academicID)
	span.SetAttributes(attribute.String("student.academic_id", academicID))

	student, err := s.repo.Delete(ctx, academicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.StudentOperations().WithLabelValues("delete", "not_found").Inc()
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		observability.StudentOperations().WithLabelValues("delete", "error").Inc()
		return dto.StudentResponse{}, err
	}

	s.invalidate(ctx, academicID)
	observability.StudentOperations().WithLabelValues("delete", "ok").Inc()
	s.logger.Info().Uint("id", student.ID).Str("academic_id", academicID).Msg("student deleted")

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) cacheSet(ctx context.Context, key string, payload interface{}) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache student response")
	}
}

func (s *studentService) invalidate(ctx context.Context, academicID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, listCacheKey, recordCacheKey(academicID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("academic_id", academicID).Msg("failed to invalidate student cache")
	}
}

func recordCacheKey(academicID string) string {
	return fmt.Sprintf("students:ra:v1:%s", academicID)
}

// normalizeRequest trims all fields and lower-cases the email. Runs before
// validation so padded-but-valid input is accepted rather than rejected by
// the email tag.
func normalizeRequest(req dto.StudentRequest) dto.StudentRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.AcademicID = strings.TrimSpace(req.AcademicID)
	return req
}
