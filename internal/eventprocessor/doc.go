// Package eventprocessor correlates classified file events and routes them to
// a dispatch sink.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│      classifier (typed etw.Event)       │
//	└─────────────────┬───────────────────────┘
//	                  │
//	                  ▼
//	┌─────────────────────────────────────────┐
//	│   eventprocessor                        │  ← Correlation
//	│   - Checks payload tag against kind     │
//	│   - Normalizes device paths             │
//	└─────────┬───────────────────────────────┘
//	          │
//	          ├──→ Create ────────→ handlecache
//	          │                      - Stores FileObject → path
//	          │                      - Never dispatched
//	          │
//	          ├──→ RenamePath ────→ handlecache lookup
//	          │                      - Fills OldFilePath (may be empty)
//	          │                      - Dispatched once
//	          │
//	          └──→ CreateNewFile ─→ Sink
//	               NameDelete        - Dispatched once
//	               DeletePath
//
// The Sink is typically a publisher.Publisher fanning events out to the
// table, span and broker subscribers.
package eventprocessor
