package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/citizen-stig/storage-witness-delta-plaground/internal/blockstate"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/session"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/store"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the linear-progression-with-delay scenario against an in-memory store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo()
	},
}

// runBlock opens a child under parent, executes writes through a
// session (so the demo exercises the whole checkpoint/working-set
// pipeline rather than writing the cache layer directly), and
// registers the frozen result.
func runBlock(ctx context.Context, m *blockstate.Manager, parent, child string, writes map[string]string) error {
	handle, err := m.OpenChild(parent, child)
	if err != nil {
		return fmt.Errorf("open child %s: %w", child, err)
	}

	cp := session.NewCheckpoint(handle)
	ws := cp.Begin()
	for k, v := range writes {
		ws.Set([]byte(k), []byte(v))
	}
	cp = ws.Commit()

	frozen, _ := cp.Freeze()
	if err := m.RegisterLayer(frozen); err != nil {
		return fmt.Errorf("register layer %s: %w", child, err)
	}
	return nil
}

func printStore(db *store.Memory, keys []string) {
	ctx := context.Background()
	for _, k := range keys {
		v, found, _ := db.Get(ctx, []byte(k))
		if found {
			fmt.Printf("    %s = %s\n", k, v)
		} else {
			fmt.Printf("    %s = <absent>\n", k)
		}
	}
}

func runDemo() error {
	ctx := context.Background()
	db := store.NewMemory()
	m := blockstate.NewManager(db)
	defer m.Stop()

	genesis := "genesis-" + uuid.NewString()[:8]
	a, b, c := "A", "B", "C"

	fmt.Println("== open/execute/register A (writes x=1, y=2) ==")
	if err := runBlock(ctx, m, genesis, a, map[string]string{"x": "1", "y": "2"}); err != nil {
		return err
	}

	fmt.Println("== open/execute/register B under A (writes x=3, z=4) ==")
	handleB, err := m.OpenChild(a, b)
	if err != nil {
		return fmt.Errorf("open child B: %w", err)
	}
	cpB := session.NewCheckpoint(handleB)
	wsB := cpB.Begin()
	v, found, err := wsB.Get(ctx, []byte("x"))
	if err != nil {
		return fmt.Errorf("read x under B: %w", err)
	}
	fmt.Printf("    read x under B before finalize(A): found=%v value=%s\n", found, v)
	wsB.Set([]byte("x"), []byte("3"))
	wsB.Set([]byte("z"), []byte("4"))
	cpB = wsB.Commit()
	frozenB, _ := cpB.Freeze()
	if err := m.RegisterLayer(frozenB); err != nil {
		return fmt.Errorf("register layer B: %w", err)
	}

	fmt.Println("== finalize A ==")
	if err := m.Finalize(ctx, a); err != nil {
		return fmt.Errorf("finalize A: %w", err)
	}
	printStore(db, []string{"x", "y", "z"})

	fmt.Println("== open/execute/register C under B (writes x=5, z=6) ==")
	if err := runBlock(ctx, m, b, c, map[string]string{"x": "5", "z": "6"}); err != nil {
		return err
	}

	fmt.Println("== finalize B ==")
	if err := m.Finalize(ctx, b); err != nil {
		return fmt.Errorf("finalize B: %w", err)
	}
	printStore(db, []string{"x", "y", "z"})

	fmt.Println("== finalize C ==")
	if err := m.Finalize(ctx, c); err != nil {
		return fmt.Errorf("finalize C: %w", err)
	}
	printStore(db, []string{"x", "y", "z"})

	fmt.Println("== done: tree should now be empty ==")
	return nil
}
