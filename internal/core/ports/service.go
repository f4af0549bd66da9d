package ports

import (
	"context"

	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

// Session is a resolved identity plus its signed token.
type Session struct {
	Identity domain.Identity `json:"identity"`
	Token    string          `json:"token"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
}

type RegistrationInput struct {
	ParentName      string `json:"parent_name" validate:"required,max=120"`
	ChildName       string `json:"child_name" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email"`
	Program         string `json:"program" validate:"required,program"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type RegistrationService interface {
	RegisterParent(ctx context.Context, in RegistrationInput) (*Session, error)
}

// SubmitResult describes the outcome of an attendance submission.
type SubmitResult struct {
	AllPresent bool                      `json:"all_present"`
	Records    []domain.AttendanceRecord `json:"records"`
}

type AttendanceService interface {
	Roster(ctx context.Context, program string) ([]domain.Enrollment, error)
	Submit(ctx context.Context, educator domain.Identity, sheet *domain.Sheet) (*SubmitResult, error)
	Report(ctx context.Context, educator domain.Identity, enrollmentID, reason string) (*domain.AttendanceRecord, error)
}

type NoticeService interface {
	Send(ctx context.Context, educator domain.Identity, text, target string) (*domain.Notice, error)
	List(ctx context.Context, viewer domain.Identity) ([]domain.Notice, error)
	Subscribe(ctx context.Context, viewer domain.Identity) (NoticeSubscription, error)
}

// NoticeSubscription is a live, already-filtered notice view.
type NoticeSubscription interface {
	Updates() <-chan []domain.Notice
	Close()
}

type SubscriptionService interface {
	Activate(ctx context.Context, parent domain.Identity) (*domain.Receipt, error)
	IsActive(ctx context.Context, parentID string) (bool, error)
	Status(ctx context.Context, parentID string) (*domain.SubscriptionStatus, error)
}

type NewEducatorInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Program string `json:"program" validate:"required,program"`
}

// CreatedEducator carries the generated password, shown once.
type CreatedEducator struct {
	Educator domain.Educator `json:"educator"`
	Password string          `json:"password"`
}

type Overview struct {
	Students  int            `json:"students"`
	Educators int            `json:"educators"`
	Revenue   domain.Revenue `json:"revenue"`
}

type AdminService interface {
	CreateEducator(ctx context.Context, in NewEducatorInput) (*CreatedEducator, error)
	ListEnrollments(ctx context.Context) ([]domain.Enrollment, error)
	ListEducators(ctx context.Context) ([]domain.Educator, error)
	AttendanceLog(ctx context.Context) ([]domain.AttendanceRecord, error)
	Revenue(ctx context.Context) (domain.Revenue, error)
	Overview(ctx context.Context) (*Overview, error)
	Delete(ctx context.Context, collection, id string) error
}
