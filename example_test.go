package patternmon_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/patternmon"
	"github.com/hupe1980/patternmon/kv"
)

func Example() {
	ctx := context.Background()
	store := kv.NewMemoryStore(patternmon.DefaultBucket)

	mon, err := patternmon.New(store)
	if err != nil {
		panic(err)
	}

	err = mon.Handle(ctx, patternmon.Message{
		Subject: "quakes",
		Body:    []byte(`{"event":"quake","magnitude":"6.2"}`),
	})
	if err != nil {
		panic(err)
	}

	keys, _ := patternmon.Keys(ctx, store, patternmon.DefaultBucket, "")
	for _, k := range keys {
		fmt.Println(k)
	}

	bundle, _ := mon.LookupBundle(ctx, "quakes")
	fmt.Println(bundle.Dimension())
	// Output:
	// bundle:v1:quakes
	// semantic:v1:event
	// semantic:v1:magnitude
	// 10000
}

func ExampleMonitor_Process() {
	mon, _ := patternmon.New(kv.NewMemoryStore())

	plan, _ := mon.Process(patternmon.Message{Subject: "s", Body: []byte(`[1,2,3]`)})
	fmt.Println(plan.Skipped(), len(plan.Writes))
	fmt.Println(plan.SkipReason)
	// Output:
	// true 0
	// message body is not a JSON object (got array)
}
