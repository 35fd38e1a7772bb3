package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/domain"
	"github.com/x-xyz/nftmarket/domain/listing"
	"github.com/x-xyz/nftmarket/service/query"
)

// currentSnapshotId is the _id of the single meta document
const currentSnapshotId = "current"

type listingDoc struct {
	listing.Listing `bson:",inline"`
	Seq             uint64 `bson:"seq"`
	// Idx keeps the source order
	Idx int `bson:"idx"`
}

type snapshotMeta struct {
	Id        string    `bson:"_id"`
	Seq       uint64    `bson:"seq"`
	FetchedAt time.Time `bson:"fetchedAt"`
	Size      int       `bson:"size"`
}

type snapshotRepo struct {
	q query.Mongo
}

func NewSnapshotRepo(q query.Mongo) listing.SnapshotRepo {
	return &snapshotRepo{q}
}

// Save upserts every listing tagged with the snapshot seq, drops listings of
// other snapshots, then moves the meta document to the new seq
func (im *snapshotRepo) Save(c ctx.Ctx, snapshot *listing.Snapshot) error {
	if len(snapshot.Listings) > 0 {
		ops := make([]query.UpsertOp, 0, len(snapshot.Listings))
		for i, l := range snapshot.Listings {
			ops = append(ops, query.UpsertOp{
				Selector: bson.M{"tokenId": l.TokenId},
				Updater:  listingDoc{Listing: l, Seq: snapshot.Seq, Idx: i},
			})
		}
		if _, _, err := im.q.BulkUpsert(c, domain.TableListings, ops); err != nil {
			c.WithField("err", err).Error("q.BulkUpsert failed")
			return err
		}
	}

	removed, err := im.q.RemoveAll(c, domain.TableListings, bson.M{"seq": bson.M{"$ne": snapshot.Seq}})
	if err != nil {
		c.WithField("err", err).Error("q.RemoveAll failed")
		return err
	}

	meta := snapshotMeta{
		Id:        currentSnapshotId,
		Seq:       snapshot.Seq,
		FetchedAt: snapshot.FetchedAt,
		Size:      len(snapshot.Listings),
	}
	if err := im.q.Upsert(c, domain.TableListingSnapshots, bson.M{"_id": currentSnapshotId}, meta); err != nil {
		c.WithField("err", err).Error("q.Upsert failed")
		return err
	}

	c.WithFields(log.Fields{
		"seq":     snapshot.Seq,
		"size":    meta.Size,
		"removed": removed,
	}).Info("snapshot saved")
	return nil
}

func (im *snapshotRepo) Load(c ctx.Ctx) (*listing.Snapshot, error) {
	meta := snapshotMeta{}
	if err := im.q.FindOne(c, domain.TableListingSnapshots, bson.M{"_id": currentSnapshotId}, &meta); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}

	docs := []listingDoc{}
	if err := im.q.Search(c, domain.TableListings, 0, 0, "idx", bson.M{"seq": meta.Seq}, &docs); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	if len(docs) != meta.Size {
		// a save was interrupted between the bulk upsert and the meta update
		c.WithFields(log.Fields{
			"seq":      meta.Seq,
			"expected": meta.Size,
			"found":    len(docs),
		}).Warn("snapshot size mismatch")
	}

	listings := make([]listing.Listing, 0, len(docs))
	for _, d := range docs {
		listings = append(listings, d.Listing)
	}
	return &listing.Snapshot{
		Seq:       meta.Seq,
		FetchedAt: meta.FetchedAt,
		Listings:  listings,
	}, nil
}
