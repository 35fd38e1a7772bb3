package mongoclient

import (
	"context"
	"crypto/tls"
	"runtime"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"golang.org/x/xerrors"

	"github.com/x-xyz/nftmarket/base/log"
)

const (
	socketTimeout  = 60 * time.Second
	connectTimeout = 10 * time.Second
)

// Client wraps mongo.Client with the database it serves
type Client struct {
	DbName string
	*mongo.Client
}

type Options struct {
	URI        string
	AuthDBName string
	DBName     string
	SSL        bool
	// SetSafe waits for a majority of the replica set on writes
	SetSafe bool
	// PoolSizeMultiplier times NumCPU is the total pool size
	PoolSizeMultiplier float64
}

// MustConnect panics if the connection fails
func MustConnect(opts Options) *Client {
	cli, err := Connect(context.Background(), opts)
	if err != nil {
		log.Log().WithFields(log.Fields{"dbName": opts.DBName, "err": err}).Panic("fail to dial Mongo")
	}
	return cli
}

func Connect(ctx context.Context, opts Options) (*Client, error) {
	connSetting, err := connstring.Parse(opts.URI)
	if err != nil {
		return nil, xerrors.Errorf("fail to parse connstring: %w", err)
	}

	clientOpts := options.Client().ApplyURI(opts.URI).SetSocketTimeout(socketTimeout)

	// connstring without authSource authenticates against AuthDBName
	if connSetting.Username != "" && connSetting.AuthSource == "" && opts.AuthDBName != "" {
		clientOpts.SetAuth(options.Credential{
			AuthMechanism:           connSetting.AuthMechanism,
			AuthMechanismProperties: connSetting.AuthMechanismProperties,
			Username:                connSetting.Username,
			Password:                connSetting.Password,
			PasswordSet:             connSetting.PasswordSet,
			AuthSource:              opts.AuthDBName,
		})
	}

	if opts.PoolSizeMultiplier > 0 {
		// every host gets its own pool
		poolSize := int(float64(runtime.NumCPU()) * opts.PoolSizeMultiplier)
		poolSize = (poolSize + len(connSetting.Hosts) - 1) / len(connSetting.Hosts)
		clientOpts.SetMinPoolSize(uint64(poolSize / 4))
		clientOpts.SetMaxPoolSize(uint64(poolSize))
	}

	if opts.SSL {
		clientOpts.SetTLSConfig(&tls.Config{})
	}
	if opts.SetSafe {
		clientOpts.SetWriteConcern(writeconcern.New(writeconcern.WMajority()))
	}
	clientOpts.SetRetryWrites(true)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, xerrors.Errorf("fail to connect mongo: %w", err)
	}

	// checks the credentials and the database name
	if _, err := client.Database(opts.DBName).ListCollectionNames(connectCtx, bson.D{}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, xerrors.Errorf("fail to test mongo db %s: %w", opts.DBName, err)
	}

	log.Log().WithFields(log.Fields{
		"mongoHosts": connSetting.Hosts,
		"db":         opts.DBName,
	}).Info("mongo connected")
	return &Client{
		Client: client,
		DbName: opts.DBName,
	}, nil
}
