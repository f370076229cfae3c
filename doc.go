// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package chanflow provides typed message-passing channels between
// cooperatively scheduled goroutines within a process, and between
// processes via an opaque platform.Port/platform.Receiver pair (see the
// platform subpackage).
//
// Seven channel flavors are provided: [NewUnbounded] (MPSC/MPMC, unbounded
// FIFO; pass [Chunked] for a burst-tolerant hot-ring-plus-chunks variant),
// [NewBounded] (backpressured FIFO with a configurable [DropPolicy]),
// [NewRendezvous] (zero-capacity handoff), [NewLatestOnly] (coalescing,
// single-slot), [NewPromise] (one-shot), [NewSRSW] (fixed-capacity
// single-producer/single-consumer ring), and [NewBroadcast]
// (single-producer/multi-consumer ring with lag recovery).
//
// [Select] races heterogeneous asynchronous sources — channel receives,
// sends, timers, and arbitrary [Arm] sources built with [OnRecv], [OnSend],
// [OnChan], [OnTick], [OnDelay], and [OnNotify] — with fairness rotation
// and deterministic cancellation of losing branches.
//
// [Notify] is a lightweight permits-and-waiters signal, independent of
// the channel machinery.
//
// Logging is pluggable via [SetLogger]; the chanlog subpackage adapts
// github.com/joeycumines/logiface loggers to the [Logger] interface used
// here. Configuration uses the functional-options pattern throughout
// ([Option]).
package chanflow
