// Package session implements multi-turn chat sessions over a
// [transport.Transport].
//
// A [Session] holds the generation parameters sent with every call, an
// optional system message and an append-only history. Each call is built as a
// [Request]:
//
//	reply, err := s.Request().
//		AddText("Summarise this thread").
//		Stream(func(fragment *message.Assistant) {
//			fmt.Print(fragment.Content())
//		}).
//		Send(ctx)
//
// The request body carries the system message and the messages added to the
// request, never the stored history. A successful non-temporary call appends
// its inputs and the reply to history as one batch; a failed call leaves
// history untouched.
package session
