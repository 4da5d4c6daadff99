package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"placepage/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// valJSON marshals v; nil slices are stored as NULL.
func valJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

// Repo stores hotel enrichment per content id and language.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHotelInfo(ctx context.Context, id, lang string, h domain.HotelInfo) error {
	cols := make([]any, 0, 4)
	for _, v := range []any{h.Facilities, h.Photos, h.Nearby, h.Reviews} {
		j, err := valJSON(v)
		if err != nil {
			return fmt.Errorf("marshal hotel info %s: %w", id, err)
		}
		cols = append(cols, j)
	}
	_, err := r.db.ExecContext(ctx, upsertHotelInfoSQL,
		id,
		lang,
		valStr(h.Rating),
		h.ReviewsAmount,
		valStr(h.Description),
		cols[0], cols[1], cols[2], cols[3],
	)
	return err
}

func (r *Repo) GetHotelInfo(ctx context.Context, id, lang string) (domain.HotelInfo, error) {
	row := r.db.QueryRowContext(ctx, getHotelInfoSQL, id, lang)

	var h domain.HotelInfo
	var rating, desc sql.NullString
	var facilities, photos, nearby, reviews []byte
	if err := row.Scan(&rating, &h.ReviewsAmount, &desc, &facilities, &photos, &nearby, &reviews); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.HotelInfo{}, domain.ErrNotFound
		}
		return domain.HotelInfo{}, err
	}
	h.Rating = rating.String
	h.Description = desc.String

	for _, c := range []struct {
		raw []byte
		dst any
	}{
		{facilities, &h.Facilities},
		{photos, &h.Photos},
		{nearby, &h.Nearby},
		{reviews, &h.Reviews},
	} {
		if len(c.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(c.raw, c.dst); err != nil {
			return domain.HotelInfo{}, fmt.Errorf("decode hotel info %s: %w", id, err)
		}
	}
	return h, nil
}

func (r *Repo) LogMiss(ctx context.Context, id string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, id, status, reason)
	return err
}
