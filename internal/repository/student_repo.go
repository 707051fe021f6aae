package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/student-records-api/internal/models"
)

// StudentRepository exposes persistence helpers for student records.
// Lookups are exact matches on the academic ID; uniqueness of that column is
// enforced by the database, never by application-level locking.
type StudentRepository interface {
	Create(ctx context.Context, student models.Student) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	GetByAcademicID(ctx context.Context, academicID string) (models.Student, error)
	Update(ctx context.Context, academicID string, name, email string) (models.Student, error)
	Delete(ctx context.Context, academicID string) (models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the repository implementation.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student models.Student) (models.Student, error) {
	if err := r.db.WithContext(ctx).Create(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) GetByAcademicID(ctx context.Context, academicID string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("academic_id = ?", academicID).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Update(ctx context.Context, academicID string, name, email string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("academic_id = ?", academicID).First(&student).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"name": name, "email": email}
		if err := tx.Model(&student).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("academic_id = ?", academicID).First(&student).Error
	})
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// Delete removes the record and returns its last state. The row is snapshotted
// inside the same transaction as the delete, so the returned value never
// depends on stale in-memory attributes.
func (r *studentRepository) Delete(ctx context.Context, academicID string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("academic_id = ?", academicID).First(&student).Error; err != nil {
			return err
		}

		result := tx.Where("academic_id = ?", academicID).Delete(&models.Student{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}
