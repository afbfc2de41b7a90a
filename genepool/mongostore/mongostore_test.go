package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erasmus-gp/egpcore/cgraph"
	"github.com/erasmus-gp/egpcore/ept"
	"github.com/erasmus-gp/egpcore/genecode"
	"github.com/erasmus-gp/egpcore/iface"
	"github.com/erasmus-gp/egpcore/typedef"
)

// MongoStoreTestSuite exercises Library against a real MongoDB instance,
// skipping entirely when one is not reachable, mirroring genepool/
// pgstore's own test suite's skip-if-unavailable pattern.
type MongoStoreTestSuite struct {
	suite.Suite
	client *mongo.Client
	lib    *Library
	reg    *typedef.Registry
}

func (s *MongoStoreTestSuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil {
		s.T().Skip("mongodb not available for testing:", err)
		return
	}
	if err := client.Ping(ctx, nil); err != nil {
		s.T().Skip("mongodb not available for testing:", err)
		return
	}
	s.client = client

	reg := typedef.NewRegistry(nil)
	pack := func(f typedef.Fields) typedef.UID {
		u, err := typedef.Pack(f)
		s.Require().NoError(err)
		return u
	}
	object, err := typedef.New("object", pack(typedef.Fields{XUID: 0}), nil, nil, nil, []string{"bool"}, false)
	s.Require().NoError(err)
	s.Require().NoError(reg.Register(object))
	boolTD, err := typedef.New("bool", pack(typedef.Fields{XUID: 1}), nil, nil, []string{"object"}, nil, false)
	s.Require().NoError(err)
	s.Require().NoError(reg.Register(boolTD))
	s.reg = reg

	collection := client.Database("egpcore_test").Collection("genetic_codes")
	lib, err := Open(ctx, collection, reg)
	s.Require().NoError(err)
	s.lib = lib
}

func (s *MongoStoreTestSuite) TearDownSuite() {
	if s.client == nil {
		return
	}
	ctx := context.Background()
	_ = s.client.Database("egpcore_test").Collection("genetic_codes").Drop(ctx)
	_ = s.client.Disconnect(ctx)
}

func (s *MongoStoreTestSuite) buildCodon() *genecode.GC {
	e, err := ept.New([]*typedef.TypesDef{mustGet(s, "bool")})
	s.Require().NoError(err)

	created := time.Unix(1577836800, 0)
	g := cgraph.New(cgraph.Primitive, created)
	isIface, err := iface.New("Is", iface.Src, []iface.Endpoint{{Row: "Is", Idx: 0, Class: iface.Src, Typ: e}})
	s.Require().NoError(err)
	s.Require().NoError(g.SetRow(cgraph.RowIs, isIface))
	odIface, err := iface.New("Od", iface.Dst, []iface.Endpoint{{Row: "Od", Idx: 0, Class: iface.Dst, Typ: e}})
	s.Require().NoError(err)
	s.Require().NoError(g.SetRow(cgraph.RowOd, odIface))
	s.Require().NoError(g.Stabilize(s.reg))

	props := genecode.Properties{GCType: genecode.Codon, GraphType: cgraph.Primitive, Deterministic: true}
	gc, err := genecode.New(g, genecode.References{}, uuid.New(), props, nil)
	s.Require().NoError(err)
	s.Require().NoError(gc.Freeze())
	return gc
}

func mustGet(s *MongoStoreTestSuite, name string) *typedef.TypesDef {
	td, err := s.reg.GetByName(name)
	s.Require().NoError(err)
	return td
}

func (s *MongoStoreTestSuite) TestPutThenGetRoundTrips() {
	ctx := context.Background()
	gc := s.buildCodon()
	s.Require().NoError(s.lib.Put(ctx, gc))

	got, err := s.lib.Get(ctx, gc.Signature())
	s.Require().NoError(err)
	s.Equal(gc.Signature(), got.Signature())
}

func (s *MongoStoreTestSuite) TestLenCountsStoredRows() {
	ctx := context.Background()
	s.Require().NoError(s.lib.Put(ctx, s.buildCodon()))
	n, err := s.lib.Len(ctx)
	s.Require().NoError(err)
	s.GreaterOrEqual(n, 1)
}

func TestMongoStoreSuite(t *testing.T) {
	suite.Run(t, new(MongoStoreTestSuite))
}
