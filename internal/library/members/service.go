package members

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/samber/lo"

	"library-backend/internal/platform/apierr"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// validate は DTO の binding タグ（required / email）を HTTP 以外の呼び出しでも効かせる。
func validate(v any) error {
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return apierr.ErrInvalid("name and a valid email are required")
	}
	return nil
}

func (s *Service) CreateMember(ctx context.Context, in CreateMemberRequest) (CreatedMemberResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(&in); err != nil {
		return CreatedMemberResponse{}, err
	}

	m := &Member{Name: in.Name, Email: in.Email}
	if err := s.store.Insert(ctx, m); err != nil {
		return CreatedMemberResponse{}, err
	}
	return CreatedMemberResponse{ID: m.ID, Name: m.Name}, nil
}

func (s *Service) ListMembers(ctx context.Context) ([]MemberListItem, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(r memberRow, _ int) MemberListItem {
		return MemberListItem{ID: r.ID, Name: r.Name, Email: r.Email, ActiveLoans: r.ActiveLoans}
	}), nil
}

func (s *Service) GetMember(ctx context.Context, id int64) (MemberDetailResponse, error) {
	m, err := s.store.GetByID(ctx, s.store.conn, id)
	if err != nil {
		return MemberDetailResponse{}, err
	}
	loans, err := s.store.ListLoans(ctx, id)
	if err != nil {
		return MemberDetailResponse{}, err
	}
	return MemberDetailResponse{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
		Loans: lo.Map(loans, func(l memberLoanRow, _ int) MemberLoan {
			return MemberLoan{
				ID:        l.ID,
				BookID:    l.BookID,
				BookTitle: l.BookTitle,
				LoanDate:  l.LoanDate,
				DueDate:   l.DueDate,
				Returned:  l.ReturnDate.Valid,
			}
		}),
	}, nil
}

func (s *Service) UpdateMember(ctx context.Context, id int64, in UpdateMemberRequest) error {
	set := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apierr.ErrInvalid("name must not be empty")
		}
		set["name"] = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validate(&CreateMemberRequest{Name: "-", Email: email}); err != nil {
			return apierr.ErrInvalid("email must be a valid address")
		}
		set["email"] = email
	}
	return s.store.Update(ctx, id, set)
}

func (s *Service) DeleteMember(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
