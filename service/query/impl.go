package query

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/x-xyz/nftmarket/base/ctx"
	"github.com/x-xyz/nftmarket/base/database/mongoclient"
	"github.com/x-xyz/nftmarket/base/log"
	"github.com/x-xyz/nftmarket/base/metrics"
	"github.com/x-xyz/nftmarket/domain"
)

const (
	queryMaxTime  = 20 * time.Second
	slowThreshold = 500 * time.Millisecond
)

var (
	met     = metrics.New("mongo")
	timeNow = time.Now
)

type impl struct {
	client *mongoclient.Client
}

// New initializes an impl
func New(client *mongoclient.Client) Mongo {
	return &impl{client: client}
}

func (im *impl) coll(table domain.Table) *mongo.Collection {
	return im.client.Database(im.client.DbName).Collection(string(table))
}

func (im *impl) FindOne(ctx ctx.Ctx, table domain.Table, query, result interface{}) error {
	defer im.track(ctx, table, "findone", query)()

	opts := options.FindOne().SetMaxTime(queryMaxTime)
	if err := im.coll(table).FindOne(ctx, query, opts).Decode(result); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		logerr(ctx, table, "FindOne: FindOne failed", err)
		return err
	}
	return nil
}

func (im *impl) Count(ctx ctx.Ctx, table domain.Table, selector interface{}) (int, error) {
	defer im.track(ctx, table, "count", selector)()

	opts := options.Count().SetMaxTime(queryMaxTime)
	n, err := im.coll(table).CountDocuments(ctx, selector, opts)
	if err != nil {
		logerr(ctx, table, "Count: CountDocuments failed", err)
		return 0, err
	}
	return int(n), nil
}

func (im *impl) Upsert(ctx ctx.Ctx, table domain.Table, selector, update interface{}) error {
	defer im.track(ctx, table, "upsert", selector)()

	opts := options.Replace().SetUpsert(true)
	if _, err := im.coll(table).ReplaceOne(ctx, selector, update, opts); err != nil {
		logerr(ctx, table, "Upsert: ReplaceOne failed", err)
		return err
	}
	return nil
}

func (im *impl) Search(ctx ctx.Ctx, table domain.Table, offset, limit int, sort string, query, results interface{}) error {
	defer im.track(ctx, table, "search", query)()

	opts := options.Find().SetMaxTime(queryMaxTime).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if sortOpt := sortOption(sort); len(sortOpt) > 0 {
		opts.SetSort(sortOpt)
	}
	cursor, err := im.coll(table).Find(ctx, query, opts)
	if err != nil {
		logerr(ctx, table, "Search: Find failed", err)
		return err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		logerr(ctx, table, "Search: cursor.All failed", err)
		return err
	}
	return nil
}

func (im *impl) RemoveAll(ctx ctx.Ctx, table domain.Table, selector interface{}) (int64, error) {
	defer im.track(ctx, table, "removeAll", selector)()

	res, err := im.coll(table).DeleteMany(ctx, selector)
	if err != nil {
		logerr(ctx, table, "RemoveAll: DeleteMany failed", err)
		return 0, err
	}
	return res.DeletedCount, nil
}

func (im *impl) BulkUpsert(ctx ctx.Ctx, table domain.Table, ops []UpsertOp) (int64, int64, error) {
	if len(ops) == 0 {
		return 0, 0, ErrEmptyBulk
	}
	defer im.track(ctx, table, "bulkUpsert", nil)()

	models := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		models = append(models, mongo.NewReplaceOneModel().SetFilter(op.Selector).SetReplacement(op.Updater).SetUpsert(true))
	}
	res, err := im.coll(table).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		logerr(ctx, table, "BulkUpsert: BulkWrite failed", err)
		return 0, 0, err
	}
	return res.MatchedCount, res.UpsertedCount, nil
}

// sortOption turns "field" / "-field" into a mongo sort document
func sortOption(sorts ...string) bson.D {
	res := bson.D{}
	for _, sort := range sorts {
		if sort == "" {
			continue
		}
		if sort[0] == '-' {
			res = append(res, bson.E{Key: sort[1:], Value: -1})
		} else {
			res = append(res, bson.E{Key: sort, Value: 1})
		}
	}
	return res
}

func logerr(ctx ctx.Ctx, table domain.Table, msg string, err error) {
	ctx.WithFields(log.Fields{"table": table, "err": err}).Error(msg)
}

// track times one operation and logs it when slower than slowThreshold
func (im *impl) track(ctx ctx.Ctx, table domain.Table, action string, query interface{}) func() {
	timer := met.BumpTime("time", "func", action, "table", string(table))
	start := timeNow()
	return func() {
		timer.End()
		if elapsed := timeNow().Sub(start); elapsed >= slowThreshold {
			met.BumpSum("slowlog", 1, "func", action, "table", string(table))
			ctx.WithFields(log.Fields{
				"table":      table,
				"action":     action,
				"durationMs": elapsed.Milliseconds(),
				"query":      query,
			}).Warn("mongo slowlog")
		}
	}
}
