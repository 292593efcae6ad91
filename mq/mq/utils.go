package mq

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Subscriber is any queue that can be subscribed to by topic. M is the
// message type the subscription delivers.
type Subscriber[M any] interface {
	Subscribe(uuid.UUID) (uuid.UUID, <-chan M, error)
	DeSubscribe(id uuid.UUID) error
}

// SubscribeProcessor subscribes to topicId on service, transforms each
// message, and forwards the results to outputStream until ctx is done.
// transformFunc may skip a message by returning true; transform errors drop
// the message. The subscription is released and outputStream closed when the
// processor stops.
func SubscribeProcessor[S Subscriber[M], M any, O any](
	topicId uuid.UUID,
	ctx context.Context,
	service S,
	transformFunc func(msg M) (O, bool, error),
	outputStream chan<- O,
) {
	go func() {
		uid, inputCh, err := service.Subscribe(topicId)
		if err != nil {
			return
		}

		defer func() {
			if err := service.DeSubscribe(uid); err != nil {
				fmt.Printf("Error de-subscribing %s: %v\n", uid, err)
			}
			close(outputStream)
		}()

		for {
			select {
			case msg, ok := <-inputCh:
				if !ok {
					// parent closed channel
					return
				}

				output, skip, err := transformFunc(msg)
				if err != nil {
					continue
				}
				if skip {
					continue
				}

				select {
				case outputStream <- output:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}
