package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/sawari_expert/internal/snapshot"
)

type snapshotIDInput struct {
	ID string `path:"id"`
}

func registerSnapshotHandlers(api huma.API, svc Service) {
	type listOutput struct {
		Body struct {
			Snapshots []snapshot.SnapshotMeta `json:"snapshots"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-snapshots", Method: http.MethodGet, Path: "/api/v1/snapshots", Summary: "List debug HTML snapshots", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *struct{}) (*listOutput, error) {
			metas, err := svc.ListSnapshots(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listOutput{}
			out.Body.Snapshots = metas
			return out, nil
		})

	type metaOutput struct {
		Body snapshot.SnapshotMeta
	}
	huma.Register(api, huma.Operation{OperationID: "get-snapshot", Method: http.MethodGet, Path: "/api/v1/snapshots/{id}", Summary: "Get snapshot metadata", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*metaOutput, error) {
			meta, err := svc.GetSnapshot(ctx, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &metaOutput{Body: meta}, nil
		})

	type htmlOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{OperationID: "get-snapshot-html", Method: http.MethodGet, Path: "/api/v1/snapshots/{id}/html", Summary: "Get captured page HTML", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*htmlOutput, error) {
			data, err := svc.ReadSnapshotHTML(ctx, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &htmlOutput{ContentType: "text/html; charset=utf-8", Body: data}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "delete-snapshot", Method: http.MethodDelete, Path: "/api/v1/snapshots/{id}", Summary: "Delete a snapshot", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*struct{}, error) {
			if err := svc.DeleteSnapshot(ctx, input.ID); err != nil {
				return nil, mapErr(err)
			}
			return nil, nil
		})
}
