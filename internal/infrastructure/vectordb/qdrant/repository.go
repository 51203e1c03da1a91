// Package qdrant provides a VectorStore implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ersonp/codex-core/internal/domain/entities"
	"github.com/ersonp/codex-core/internal/domain/ports"
	"github.com/ersonp/codex-core/internal/infrastructure/config"
)

// Repository implements the VectorStore interface using Qdrant. Collection
// names are passed per call because one service instance manages many
// collections over a single connection.
type Repository struct {
	collections pb.CollectionsClient
	points      pb.PointsClient
	conn        *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
		conn:        conn,
	}, nil
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// Ping checks that Qdrant is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if _, err := r.collections.List(ctx, &pb.ListCollectionsRequest{}); err != nil {
		return fmt.Errorf("pinging qdrant: %w", err)
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, collection string, vectorSize uint64) error {
	_, err := r.collections.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and all its data.
func (r *Repository) DeleteCollection(ctx context.Context, collection string) error {
	_, err := r.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// ListCollections returns the names of all existing collections.
func (r *Repository) ListCollections(ctx context.Context) ([]string, error) {
	resp, err := r.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	names := make([]string, 0, len(resp.Collections))
	for _, c := range resp.Collections {
		names = append(names, c.Name)
	}
	return names, nil
}

// UpsertChunks stores document chunks with their embeddings.
func (r *Repository) UpsertChunks(ctx context.Context, collection string, chunks []entities.Chunk) error {
	points := make([]*pb.PointStruct, 0, len(chunks))

	for _, chunk := range chunks {
		pointID := chunk.ID
		if pointID == "" {
			pointID = uuid.New().String()
		}

		point := &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: pointID,
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: chunk.Embedding,
					},
				},
			},
			Payload: map[string]*pb.Value{
				"document_id": {Kind: &pb.Value_StringValue{StringValue: chunk.DocumentID}},
				"file_name":   {Kind: &pb.Value_StringValue{StringValue: chunk.FileName}},
				"chunk_index": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(chunk.Index)}},
				"text":        {Kind: &pb.Value_StringValue{StringValue: chunk.Text}},
			},
		}
		points = append(points, point)
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// DeleteByDocument removes every chunk belonging to the given ref doc id.
func (r *Repository) DeleteByDocument(ctx context.Context, collection string, documentID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: documentFilter(documentID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points by document: %w", err)
	}

	return nil
}

// Search performs a similarity search and returns the closest chunks.
func (r *Repository) Search(ctx context.Context, collection string, embedding []float32, limit int) ([]ports.ScoredChunk, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	scored := make([]ports.ScoredChunk, 0, len(resp.Result))
	for _, point := range resp.Result {
		chunk := entities.Chunk{
			DocumentID: getStringValue(point.Payload, "document_id"),
			FileName:   getStringValue(point.Payload, "file_name"),
			Index:      int(getIntValue(point.Payload, "chunk_index")),
			Text:       getStringValue(point.Payload, "text"),
		}
		if id := point.Id.GetUuid(); id != "" {
			chunk.ID = id
		}
		scored = append(scored, ports.ScoredChunk{Chunk: chunk, Score: point.Score})
	}

	return scored, nil
}

// Count returns the number of points in the collection.
func (r *Repository) Count(ctx context.Context, collection string) (uint64, error) {
	resp, err := r.collections.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// documentFilter matches every point whose document_id payload equals id.
func documentFilter(id string) *pb.Filter {
	return &pb.Filter{
		Must: []*pb.Condition{
			{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key: "document_id",
						Match: &pb.Match{
							MatchValue: &pb.Match_Keyword{
								Keyword: id,
							},
						},
					},
				},
			},
		},
	}
}

// Helper functions for payload extraction.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func getIntValue(payload map[string]*pb.Value, key string) int64 {
	if v, ok := payload[key]; ok {
		return v.GetIntegerValue()
	}
	return 0
}
