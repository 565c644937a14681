package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/braidhq/braid/pkg/storage"
	"github.com/braidhq/braid/pkg/storage/sqlite"
)

var _ = Describe("Store", func() {
	var (
		store *sqlite.Store
		ctx   context.Context
	)

	testEmbedding := []float32{0.1, 0.2, 0.3, 0.4}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = sqlite.New(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("New", func() {
		It("creates a store with an in-memory database", func() {
			Expect(store).NotTo(BeNil())
			Expect(store.Ping(ctx)).To(Succeed())
		})

		It("creates a store with a file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.New(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Insert", func() {
		It("assigns dense increasing ids", func() {
			ev1, err := store.Insert(ctx, "first", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev1.ID).To(Equal(int64(1)))

			ev2, err := store.Insert(ctx, "second", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev2.ID).To(Equal(int64(2)))
		})

		It("stamps a UTC timestamp", func() {
			before := time.Now().UTC().Add(-time.Second)
			ev, err := store.Insert(ctx, "stamped", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(ev.Timestamp.Location()).To(Equal(time.UTC))
			Expect(ev.Timestamp).To(BeTemporally(">", before))
		})

		It("resumes id allocation after reopening a file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "resume.db")

			s, err := sqlite.New(dbPath)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Insert(ctx, "one", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Insert(ctx, "two", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Close()).To(Succeed())

			reopened, err := sqlite.New(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			ev, err := reopened.Insert(ctx, "three", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.ID).To(Equal(int64(3)))
		})

		It("refuses writes after close", func() {
			Expect(store.Close()).To(Succeed())
			_, err := store.Insert(ctx, "too late", testEmbedding, nil, nil)
			Expect(err).To(MatchError(storage.ErrClosed))
			store = nil
		})
	})

	Describe("GetByID", func() {
		It("round-trips every field", func() {
			causeEv, err := store.Insert(ctx, "the cause", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			rel := "a concrete relationship"
			inserted, err := store.Insert(ctx, "the effect", testEmbedding, &causeEv.ID, &rel)
			Expect(err).NotTo(HaveOccurred())

			got, err := store.GetByID(ctx, inserted.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.EffectText).To(Equal("the effect"))
			Expect(got.Embedding).To(Equal(testEmbedding))
			Expect(got.CauseID).NotTo(BeNil())
			Expect(*got.CauseID).To(Equal(causeEv.ID))
			Expect(*got.Relationship).To(Equal(rel))
			Expect(got.Timestamp).To(BeTemporally("~", inserted.Timestamp, time.Microsecond))
		})

		It("returns a NotFoundError for a missing id", func() {
			_, err := store.GetByID(ctx, 42)
			Expect(err).To(HaveOccurred())
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("RecentWithin", func() {
		It("excludes events at or before the cutoff", func() {
			ev, err := store.Insert(ctx, "now-ish", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			past, err := store.RecentWithin(ctx, ev.Timestamp.Add(-time.Hour), 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(past).To(HaveLen(1))

			future, err := store.RecentWithin(ctx, ev.Timestamp.Add(time.Hour), 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(future).To(BeEmpty())
		})

		It("returns newest first and honours the limit", func() {
			for _, text := range []string{"a", "b", "c"} {
				_, err := store.Insert(ctx, text, testEmbedding, nil, nil)
				Expect(err).NotTo(HaveOccurred())
			}

			recent, err := store.RecentWithin(ctx, time.Now().UTC().Add(-time.Hour), 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(recent).To(HaveLen(2))
			Expect(recent[0].EffectText).To(Equal("c"))
			Expect(recent[1].EffectText).To(Equal("b"))
		})
	})

	Describe("AllForScan", func() {
		It("returns every event oldest first", func() {
			for _, text := range []string{"a", "b", "c"} {
				_, err := store.Insert(ctx, text, testEmbedding, nil, nil)
				Expect(err).NotTo(HaveOccurred())
			}

			all, err := store.AllForScan(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].ID).To(Equal(int64(1)))
			Expect(all[2].ID).To(Equal(int64(3)))
		})
	})

	Describe("ChildrenOf", func() {
		It("returns direct children oldest first", func() {
			root, err := store.Insert(ctx, "root", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			rel := "followed"
			_, err = store.Insert(ctx, "child one", testEmbedding, &root.ID, &rel)
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Insert(ctx, "child two", testEmbedding, &root.ID, &rel)
			Expect(err).NotTo(HaveOccurred())

			children, err := store.ChildrenOf(ctx, root.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(children).To(HaveLen(2))
			Expect(children[0].EffectText).To(Equal("child one"))
			Expect(children[1].EffectText).To(Equal("child two"))
		})

		It("returns nothing for a leaf", func() {
			ev, err := store.Insert(ctx, "leaf", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			children, err := store.ChildrenOf(ctx, ev.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(children).To(BeEmpty())
		})
	})

	Describe("Stats", func() {
		It("counts total and linked events", func() {
			root, err := store.Insert(ctx, "root", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			rel := "followed"
			_, err = store.Insert(ctx, "linked", testEmbedding, &root.ID, &rel)
			Expect(err).NotTo(HaveOccurred())

			stats, err := store.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalEvents).To(Equal(int64(2)))
			Expect(stats.LinkedEvents).To(Equal(int64(1)))
		})
	})

	Describe("append-only behaviour", func() {
		It("never mutates prior rows on later inserts", func() {
			first, err := store.Insert(ctx, "immutable", testEmbedding, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			for _, text := range []string{"later one", "later two"} {
				_, err := store.Insert(ctx, text, testEmbedding, &first.ID, nil)
				Expect(err).NotTo(HaveOccurred())
			}

			got, err := store.GetByID(ctx, first.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.EffectText).To(Equal("immutable"))
			Expect(got.Timestamp).To(BeTemporally("~", first.Timestamp, time.Microsecond))
			Expect(got.CauseID).To(BeNil())
		})
	})
})
