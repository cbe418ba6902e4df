// Package usecase は追跡対象組織の管理ロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"competitor_backend/internal/feature/organizations/domain"
	"competitor_backend/internal/feature/organizations/domain/entity"
)

const (
	// MaxNameLength は組織名の最大文字数（rune数）です。
	MaxNameLength = 255
	// MaxKeywords は組織に登録できるキーワード数の上限です。
	MaxKeywords = 20
)

// OrganizationRepository は組織の永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type OrganizationRepository interface {
	// Create は組織を作成し、採番されたIDを o に設定します。同名の組織がある場合は ErrOrganizationExists を返します。
	Create(ctx context.Context, o *entity.Organization) error
	// Update は組織を更新します。存在しない場合は ErrOrganizationNotFound を返します。
	Update(ctx context.Context, o *entity.Organization) error
	// Delete は組織とその更新情報・実行履歴を削除します。
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*entity.Organization, error)
	List(ctx context.Context) ([]entity.Organization, error)
}

// ProfileFetcher はWebサイトから組織のプロフィールを抽出します。
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, website string) (*entity.Profile, error)
}

// OrganizationUsecase は追跡対象組織のCRUDを提供します。
type OrganizationUsecase struct {
	repo    OrganizationRepository
	profile ProfileFetcher
}

// NewOrganizationUsecase は新しい OrganizationUsecase を作成します。profile が nil の場合はプロフィール補完を行いません。
func NewOrganizationUsecase(repo OrganizationRepository, profile ProfileFetcher) *OrganizationUsecase {
	return &OrganizationUsecase{repo: repo, profile: profile}
}

// Create は組織を登録します。
// Webサイトが指定され、説明・キーワードが空の場合はWebサイトから補完します。補完の失敗は無視されます。
func (u *OrganizationUsecase) Create(ctx context.Context, o entity.Organization) (*entity.Organization, error) {
	o, err := sanitize(o)
	if err != nil {
		return nil, err
	}
	u.enrich(ctx, &o)
	if err := u.repo.Create(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update は組織の内容を置き換えます。
func (u *OrganizationUsecase) Update(ctx context.Context, id uint, o entity.Organization) (*entity.Organization, error) {
	o, err := sanitize(o)
	if err != nil {
		return nil, err
	}
	o.ID = id
	if err := u.repo.Update(ctx, &o); err != nil {
		return nil, err
	}
	return u.repo.FindByID(ctx, id)
}

// Delete は組織を削除します。その組織の更新情報も削除されます。
func (u *OrganizationUsecase) Delete(ctx context.Context, id uint) error {
	return u.repo.Delete(ctx, id)
}

// Get は組織を1件返します。
func (u *OrganizationUsecase) Get(ctx context.Context, id uint) (*entity.Organization, error) {
	return u.repo.FindByID(ctx, id)
}

// List は全組織を名前順に返します。
func (u *OrganizationUsecase) List(ctx context.Context) ([]entity.Organization, error) {
	return u.repo.List(ctx)
}

func (u *OrganizationUsecase) enrich(ctx context.Context, o *entity.Organization) {
	if u.profile == nil || o.Website == "" || (o.Description != "" && len(o.Keywords) > 0) {
		return
	}
	p, err := u.profile.FetchProfile(ctx, o.Website)
	if err != nil {
		slog.Warn("failed to fetch organization profile", "component", "organizations", "website", o.Website, "error", err)
		return
	}
	if o.Description == "" {
		o.Description = p.Description
	}
	if len(o.Keywords) == 0 {
		o.Keywords = limitKeywords(p.Keywords)
	}
	if o.Industry == "" {
		o.Industry = p.Industry
	}
}

// sanitize は入力を整形し、検証します。
func sanitize(o entity.Organization) (entity.Organization, error) {
	o.Name = strings.TrimSpace(o.Name)
	o.Website = strings.TrimSpace(o.Website)
	o.Industry = strings.TrimSpace(o.Industry)
	o.Description = strings.TrimSpace(o.Description)
	o.Location = strings.TrimSpace(o.Location)
	o.Keywords = o.SearchKeywords()

	if o.Name == "" {
		return o, fmt.Errorf("%w: name is required", domain.ErrInvalidOrganization)
	}
	if utf8.RuneCountInString(o.Name) > MaxNameLength {
		return o, fmt.Errorf("%w: name exceeds maximum length of %d characters", domain.ErrInvalidOrganization, MaxNameLength)
	}
	if len(o.Keywords) > MaxKeywords {
		return o, fmt.Errorf("%w: at most %d keywords are allowed", domain.ErrInvalidOrganization, MaxKeywords)
	}
	if o.Website != "" {
		if !strings.Contains(o.Website, "://") {
			o.Website = "https://" + o.Website
		}
		w, err := url.Parse(o.Website)
		if err != nil || (w.Scheme != "http" && w.Scheme != "https") || w.Host == "" {
			return o, fmt.Errorf("%w: website must be an http(s) URL", domain.ErrInvalidOrganization)
		}
	}
	return o, nil
}

func limitKeywords(ks []string) []string {
	tmp := entity.Organization{Keywords: ks}
	out := tmp.SearchKeywords()
	if len(out) > MaxKeywords {
		out = out[:MaxKeywords]
	}
	return out
}
