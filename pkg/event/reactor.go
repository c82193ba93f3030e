package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/aDramaQueen/messenger/pkg/ledger"
)

// RegisterReactors binds the full store-event → ledger-call table on the
// bus. Each reactor runs synchronously on the mutating call.
func RegisterReactors(bus *Bus, l *ledger.Ledger) {
	bus.Subscribe(KindUserCreated, func(ctx context.Context, e Event) error {
		ev, err := as[UserCreated](e)
		if err != nil {
			return err
		}
		return l.CreateRecord(ctx, ev.UserID)
	})

	bus.Subscribe(KindUserDeleted, func(ctx context.Context, e Event) error {
		ev, err := as[UserDeleted](e)
		if err != nil {
			return err
		}
		return l.DeleteRecord(ctx, ev.UserID)
	})

	bus.Subscribe(KindUserMessageCreated, func(ctx context.Context, e Event) error {
		ev, err := as[UserMessageCreated](e)
		if err != nil {
			return err
		}
		return l.Increment(ctx, ev.OwnerID)
	})

	bus.Subscribe(KindUserMessageReceived, func(ctx context.Context, e Event) error {
		ev, err := as[UserMessageReceived](e)
		if err != nil {
			return err
		}
		return l.Decrement(ctx, ev.OwnerID)
	})

	bus.Subscribe(KindUserMessageDeleted, func(ctx context.Context, e Event) error {
		ev, err := as[UserMessageDeleted](e)
		if err != nil {
			return err
		}
		// Only a message the owner could still have read costs a counter unit.
		if ev.Received {
			return nil
		}
		return l.Decrement(ctx, ev.OwnerID)
	})

	bus.Subscribe(KindGroupTargetsAdded, func(ctx context.Context, e Event) error {
		ev, err := as[GroupTargetsAdded](e)
		if err != nil {
			return err
		}
		var errs []error
		for _, userID := range ev.UserIDs {
			if err := l.Increment(ctx, userID); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	bus.Subscribe(KindGroupMessageRead, func(ctx context.Context, e Event) error {
		ev, err := as[GroupMessageRead](e)
		if err != nil {
			return err
		}
		return l.Decrement(ctx, ev.UserID)
	})

	bus.Subscribe(KindGroupMessageDeleted, func(ctx context.Context, e Event) error {
		ev, err := as[GroupMessageDeleted](e)
		if err != nil {
			return err
		}
		var errs []error
		for _, userID := range ev.UnreadUserIDs {
			if err := l.Decrement(ctx, userID); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

func as[T Event](e Event) (T, error) {
	ev, ok := e.(T)
	if !ok {
		return ev, fmt.Errorf("event: unexpected payload %T for kind %s", e, e.Kind())
	}
	return ev, nil
}
