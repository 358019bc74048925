// Package broadcast turns a single-consumer source into a fan-out stream
// that many independent consumers read at their own pace.
//
// The source is polled at most once per item no matter how many handles
// exist. Produced items are kept in a fixed-size ring so handles that fall
// behind can catch up; a handle that falls further behind than the ring
// capacity skips ahead and is told how many items it missed.
//
// # Handles
//
//   - Handle: owning reference. The source is closed when the last Handle
//     is closed.
//   - WeakHandle: non-owning reference obtained with Handle.Downgrade. It
//     reads like a Handle while any Handle is open and reports end of stream
//     forever afterwards.
//
// Handle.Clone starts reading at the current head of the stream. It does
// not replay items produced before the clone, even if they are still in
// the ring. Downgrade and Upgrade keep the position of the handle they were
// made from.
//
// # Usage
//
//	root, err := broadcast.New(broadcast.FromChannel("ticks", ticks), 64)
//	if err != nil {
//	    return err
//	}
//	defer root.Close()
//
//	sub := root.Clone()
//	go func() {
//	    defer sub.Close()
//	    for {
//	        item, ok, err := sub.Next(ctx)
//	        if err != nil || !ok {
//	            return
//	        }
//	        if item.Skipped > 0 {
//	            log.Printf("missed %d ticks", item.Skipped)
//	        }
//	        handle(item.Value)
//	    }
//	}()
//
// Items are handed to every consumer by value. Types that hold references
// (slices, maps, pointers) are shared between consumers, not copied.
package broadcast
