package mongodb

import (
	"context"
	"fmt"
	"os"

	"github.com/gocrud/hello/logging"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// LoggerProvider 将日志写入 MongoDB 集合
type LoggerProvider struct {
	client     *mongo.Client
	collection *mongo.Collection
	options    Options
}

// NewLoggerProvider 创建 MongoDB 日志提供者
// 驱动延迟建立连接，服务不可用时错误出现在写入阶段
func NewLoggerProvider(opts Options) (*LoggerProvider, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mongodb: invalid configuration: %w", err)
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = func(err error) {
			fmt.Fprintf(os.Stderr, "mongodb logger: %v\n", err)
		}
	}

	clientOpts := options.Client().ApplyURI(opts.Uri)
	if opts.Username != "" || opts.Password != "" {
		clientOpts.SetAuth(options.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	}
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}
	if opts.ServerSelectionTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(opts.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: failed to connect: %w", err)
	}

	return &LoggerProvider{
		client:     client,
		collection: client.Database(opts.Database).Collection(opts.Collection),
		options:    opts,
	}, nil
}

// Collection 返回日志集合
func (p *LoggerProvider) Collection() *mongo.Collection {
	return p.collection
}

// CreateLogger 创建指定类别的后端
func (p *LoggerProvider) CreateLogger(category string) logging.Backend {
	return &backend{provider: p, category: category}
}

// Close 断开客户端连接
func (p *LoggerProvider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.options.WriteTimeout)
	defer cancel()
	return p.client.Disconnect(ctx)
}

func (p *LoggerProvider) insert(doc bson.M) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.options.WriteTimeout)
	defer cancel()
	_, err := p.collection.InsertOne(ctx, doc)
	return err
}

// toDocument 将日志条目转换为文档
func toDocument(entry *logging.LogEntry) bson.M {
	doc := bson.M{
		"time":     entry.Time,
		"level":    entry.Level.String(),
		"category": entry.Category,
		"msg":      entry.Message,
	}
	if entry.EventID.ID != 0 {
		doc["event_id"] = entry.EventID.ID
	}
	if entry.EventID.Name != "" {
		doc["event"] = entry.EventID.Name
	}
	if len(entry.Fields) > 0 {
		fields := bson.M{}
		for _, f := range entry.Fields {
			fields[f.Key] = f.Value
		}
		doc["fields"] = fields
	}
	if entry.Err != nil {
		doc["error"] = entry.Err.Error()
	}
	return doc
}

type backend struct {
	provider *LoggerProvider
	category string
}

func (b *backend) IsEnabled(level logging.LogLevel) bool {
	return level >= b.provider.options.MinimumLevel
}

func (b *backend) Log(level logging.LogLevel, eventID logging.EventID, state any, err error, formatter logging.MessageFormatter) {
	if !b.IsEnabled(level) {
		return
	}

	doc := toDocument(logging.NewEntry(b.category, level, eventID, state, err, formatter))
	if ierr := b.provider.insert(doc); ierr != nil {
		b.provider.options.ErrorHandler(fmt.Errorf("insert into %s.%s: %w",
			b.provider.options.Database, b.provider.options.Collection, ierr))
	}
}

func (b *backend) BeginScope(any) logging.Scope {
	return logging.NoopScope
}
