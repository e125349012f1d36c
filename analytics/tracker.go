package analytics

import (
	"context"
	"devflow/database"
	"devflow/helpers"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// profile domains tracked by the visitor analytics
const (
	DomainQuestion = "question"
	DomainUser     = "user"
)

// Tracker collects profile visits in the analytics cache (InfluxDB) and
// periodically replicates the aggregated counts into MongoDB. The live
// view counter on the question document is separate - this pipeline keeps
// the long-term archive and the visitor lists.
type Tracker struct {
	influxClient influxdb2.Client
	VisitorAPI   database.InfluxAPI
	collections  map[string]*mongo.Collection
	GetUserName  func(ID string) (string, error)
}

// Visit is one entry of the recent-visitors list
type Visit struct {
	VisitTS  time.Time `json:"visitTS"`
	ObjectID string    `json:"-"`
	UserID   string    `json:"userID"`
	UserName string    `json:"userName"`
}

// SetConnections initializes the instance
func (t *Tracker) SetConnections(influxClient *influxdb2.Client, mongoCollections map[string]*mongo.Collection) {
	t.influxClient = *influxClient
	t.collections = mongoCollections
}

// SaveVisitor stores event data in the analytics cache.
// Fire-and-forget: analytics must never fail a page view.
func (t *Tracker) SaveVisitor(domain string, profileID string, userID string) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	// include the domain in the tag, so aggregation queries can map the
	// counts back to their collection.
	// the risk of high series cardinality is accepted, profiles is what
	// we're interested in
	// https://docs.influxdata.com/influxdb/v2.0/write-data/best-practices/resolve-high-cardinality/
	p := influxdb2.NewPoint(
		"visit",
		map[string]string{"profileId": domain + "_" + profileID},
		map[string]interface{}{"userId": userID},
		time.Now())

	err := t.VisitorAPI.WriteAPI.WritePoint(context.Background(), p)
	if err != nil {
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
	}
}

// GetVisits counts the visits of a profile since startDT.
// The value is "live" - read from the analytics cache, which holds a
// maximum period (TTL) of 30 days; older visits only exist as replicated
// counts in MongoDB.
func (t *Tracker) GetVisits(domain string, profileID string, startDT time.Time) (int64, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return -1, nil
	}

	flux := `from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and r["profileId"] == "%s")
		|> count()
		|> yield(name: "count")`

	id := domain + "_" + profileID
	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339),
		id)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return 0, helpers.WrapError(err, helpers.FuncName())
	}

	// single record expected
	var res interface{}
	for result.Next() {
		res = result.Record().Value()
	}

	var cnt int64 = 0
	if res != nil {
		cnt = res.(int64)
	}

	return cnt, nil
}

// ListVisitors returns the last visitors of a profile (last visit per
// user, newest first)
func (t *Tracker) ListVisitors(domain string, profileID string, startDT time.Time) ([]Visit, error) {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return nil, nil
	}

	flux := `import "strings"
		from(bucket: "%s")
		|> range(start: %s)
		|> filter(fn: (r) => r["_measurement"] == "visit" and strings.containsStr(substr: "%s", v: r.profileId))
		|> group(columns: ["_value"], mode:"by")
		|> max(column: "_time")
		|> sort(columns: ["_time"], desc: true)
		|> limit(n:10, offset: 0)`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		startDT.Format(time.RFC3339),
		domain+"_"+profileID)

	result, err := t.VisitorAPI.QueryAPI.Query(context.Background(), flux)
	if err != nil {
		return nil, helpers.WrapError(err, helpers.FuncName())
	}

	var visit Visit
	var visits []Visit
	for result.Next() {
		visit.VisitTS = result.Record().Time()
		visit.ObjectID = profileID
		if result.Record().Value() == nil {
			visit.UserID = ""
			visit.UserName = ""
		} else {
			visit.UserID = result.Record().Value().(string)
			visit.UserName, _ = t.GetUserName(visit.UserID)
		}

		visits = append(visits, visit)
	}

	// the flux query is sorted, the slice arrives in group order though
	sort.Slice(visits, func(i, j int) bool {
		return visits[j].VisitTS.Before(visits[i].VisitTS)
	})

	return visits, nil
}

// Replicate moves aged visit counts from the cache (InfluxDB) into the
// database. Counts are summed per profile via $inc into an archive field,
// separate from the live view counter so nothing is counted twice.
// Runs periodically (see main), errors are logged, not returned.
func (t *Tracker) Replicate() {

	if os.Getenv("USE_ANALYTICS") != "YES" {
		return
	}

	ctx := context.Background()

	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.Now().UTC().Location()) // just a minimum date
	stop := time.Now().AddDate(0, -1, 0)                                    // everything older than one month

	// 1. get counts from influxDB
	flux := `from(bucket: "%s")
	|> range(start: %s, stop: %s)
	|> filter(fn: (r) => r["_measurement"] == "visit")
	|> count()
	|> yield(name: "count")`

	flux = fmt.Sprintf(
		flux,
		os.Getenv("ANALYTICS_VISITORS_BUCKET"),
		start.Format(time.RFC3339),
		stop.Format(time.RFC3339))

	result, err := t.VisitorAPI.QueryAPI.Query(ctx, flux)
	if err != nil {
		fmt.Println(helpers.WrapError(err, helpers.FuncName()))
		return
	}

	// 2. save counts to MongoDB (bulk, one write model per profile)
	opModels := make(map[string][]mongo.WriteModel)

	var strs []string // used to extract the domain from the tag
	for result.Next() {

		strs = strings.Split(result.Record().ValueByKey("profileId").(string), "_")
		if len(strs) != 2 {
			continue
		}

		operation := bson.D{
			{Key: "$inc", Value: bson.D{
				{Key: "metaInfo.visits", Value: result.Record().Value()},
			}},
		}

		opModel := mongo.NewUpdateOneModel()
		opModel.SetFilter(bson.D{{Key: "_id", Value: helpers.ObjectID(strs[1])}}).SetUpdate(operation)

		switch strs[0] {
		case DomainQuestion:
			opModels[database.CollectionQuestions] = append(opModels[database.CollectionQuestions], opModel)
		case DomainUser:
			opModels[database.CollectionUsers] = append(opModels[database.CollectionUsers], opModel)
		default:
			fmt.Printf("replication: unknown domain %v\n", strs[0])
		}
	}

	var i int = 0
	for _, v := range opModels {
		i += len(v)
	}

	// abort if no data to process
	if i == 0 {
		fmt.Printf("%v: %v profile's visit(s) replicated.\n", time.Now().Format(time.RFC3339), 0)
		return
	}

	opts := options.BulkWrite().SetOrdered(false)

	var cnt int64 = 0
	for k, v := range opModels {
		if v != nil {
			res, err := t.collections[k].BulkWrite(ctx, v, opts)
			if err != nil {
				fmt.Println(helpers.WrapError(err, helpers.FuncName()))
				continue
			}
			cnt += res.MatchedCount
		}
	}

	fmt.Printf("%v: %v profile's visit(s) replicated.\n", time.Now().Format(time.RFC3339), cnt)

	// 3. delete transferred data from influxDB
	err = t.VisitorAPI.DeleteAPI.DeleteWithName(ctx, os.Getenv("ANALYTICS_ORG"), os.Getenv("ANALYTICS_VISITORS_BUCKET"), start, stop, "")
	if err != nil {
		fmt.Println("ERROR: could not delete replicated data in influxDB => counts will duplicate")
		return
	}
}
