package memory

import (
	"context"
	"sort"
	"time"

	"toolcrib-backend/internal/domain"
)

type notificationRepository struct {
	access
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.write(func(st *state) error {
		n.ID = st.nextID()
		if n.CreatedOn.IsZero() {
			n.CreatedOn = time.Now()
		}
		st.notifications = append(st.notifications, *n)
		return nil
	})
}

func (r *notificationRepository) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	var mine []domain.Notification
	err := r.read(func(st *state) error {
		for _, n := range st.notifications {
			if n.UserID == userID {
				mine = append(mine, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].ID > mine[j].ID })
	return page(mine, limit, offset), int32(len(mine)), nil
}

func page[T any](all []T, limit, offset int32) []T {
	if int(offset) >= len(all) {
		return nil
	}
	end := int(offset + limit)
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
