// Package testutil provides test helpers shared by the store backends and
// the monitor.
//
// # Store contract
//
//	testutil.RunBucketContract(t, store, "bucket")
//
// # Recording store
//
//	rec := testutil.NewRecordingStore(kv.NewMemoryStore("bucket"))
//	rec.FailSetAt(2, kv.ErrAccessDenied)
//	... run the code under test ...
//	rec.SetKeys() // keys written, in order
package testutil
