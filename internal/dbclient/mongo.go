package dbclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"pagedesigner/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoConnector implements Connector for MongoDB.
type mongoConnector struct {
	client *mongo.Client
	dbName string
}

// mongoQuery is the JSON structure of a MongoDB data source query.
type mongoQuery struct {
	Collection string         `json:"collection"`
	Filter     map[string]any `json:"filter,omitempty"`
	Projection map[string]any `json:"projection,omitempty"`
	Sort       map[string]any `json:"sort,omitempty"`
}

// buildMongoURI returns the connection URI and database name for src.
func buildMongoURI(src domain.DataSource, password string) (uri, dbName string) {
	// If host is already a full connection string (Atlas mongodb+srv:// or standard mongodb://),
	// use it directly. Otherwise, build the URI from host:port.
	if strings.HasPrefix(src.Host, "mongodb+srv://") || strings.HasPrefix(src.Host, "mongodb://") {
		uri = src.Host
		// Replace <password> placeholder commonly found in Atlas connection strings
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", password)
			uri = strings.ReplaceAll(uri, "<db_password>", password)
		}
	} else {
		port := src.Port
		if port == 0 {
			port = 27017
		}
		if src.Username != "" {
			uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", src.Username, password, src.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", src.Host, port)
		}
	}

	dbName = src.Database
	if dbName == "" {
		dbName = databaseFromURI(uri)
	}
	return uri, dbName
}

// databaseFromURI extracts the path segment of user:pass@host/DB_NAME?params,
// defaulting to "test".
func databaseFromURI(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		if strings.HasPrefix(rest, prefix) {
			rest = rest[len(prefix):]
			break
		}
	}
	if at := strings.Index(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	if slash := strings.Index(rest, "/"); slash != -1 {
		path := rest[slash+1:]
		if q := strings.Index(path, "?"); q != -1 {
			path = path[:q]
		}
		if path != "" {
			return path
		}
	}
	return "test"
}

func newMongoConnector(src domain.DataSource, password string) (*mongoConnector, error) {
	uri, dbName := buildMongoURI(src, password)

	// Mask password in URI for logging
	logURI := uri
	if password != "" {
		logURI = strings.ReplaceAll(logURI, password, "***")
	}
	log.Printf("[MONGO] Connecting with URI: %s (db %s)", logURI, dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoConnector{client: client, dbName: dbName}, nil
}

// unmarshalEJSON re-encodes a map[string]any field and uses bson.UnmarshalExtJSON
// to convert MongoDB Extended JSON types ($oid, $date, $numberLong, etc.) to BSON.
func unmarshalEJSON(field map[string]any) map[string]any {
	if field == nil {
		return nil
	}
	raw, err := json.Marshal(field)
	if err != nil {
		return field
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		log.Printf("[MONGO] EJSON parse warning: %v", err)
		return field
	}
	result := make(map[string]any, len(doc))
	for _, elem := range doc {
		result[elem.Key] = elem.Value
	}
	return result
}

func parseMongoQuery(query string) (mongoQuery, error) {
	var mq mongoQuery
	if err := json.Unmarshal([]byte(query), &mq); err != nil {
		return mq, fmt.Errorf("invalid query JSON: %w", err)
	}
	if mq.Collection == "" {
		return mq, fmt.Errorf("query must specify 'collection'")
	}
	mq.Filter = unmarshalEJSON(mq.Filter)
	mq.Projection = unmarshalEJSON(mq.Projection)
	mq.Sort = unmarshalEJSON(mq.Sort)
	return mq, nil
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoConnector) FetchRecord(ctx context.Context, query string) (Record, error) {
	mq, err := parseMongoQuery(query)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.FindOne()
	if mq.Projection != nil {
		opts.SetProjection(mq.Projection)
	}
	if mq.Sort != nil {
		opts.SetSort(mq.Sort)
	}
	filter := mq.Filter
	if filter == nil {
		filter = map[string]any{}
	}

	var doc bson.M
	err = m.client.Database(m.dbName).Collection(mq.Collection).FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("find one: %w", err)
	}

	rec := make(Record)
	flattenInto(rec, "", doc)
	return rec, nil
}

// flattenInto writes v into rec, joining nested document keys with dots and
// array positions as indexes.
func flattenInto(rec Record, prefix string, v any) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch val := v.(type) {
	case bson.M:
		flattenInto(rec, prefix, map[string]any(val))
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenInto(rec, join(k), val[k])
		}
	case bson.D:
		for _, e := range val {
			flattenInto(rec, join(e.Key), e.Value)
		}
	case bson.A:
		flattenInto(rec, prefix, []any(val))
	case []any:
		for i, item := range val {
			flattenInto(rec, join(strconv.Itoa(i)), item)
		}
	case bson.ObjectID:
		rec[prefix] = val.Hex()
	case bson.DateTime:
		rec[prefix] = val.Time().UTC().Format(time.RFC3339)
	default:
		rec[prefix] = formatValue(val)
	}
}

func (m *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
