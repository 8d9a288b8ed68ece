package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/apperrors"
)

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := mux.Vars(r)[name]
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.New(apperrors.BadRequest, name+" param must be a valid id")
	}
	return id, nil
}

// queryID parses an optional object-id query parameter; absent means nil.
func queryID(r *http.Request, name string) (*primitive.ObjectID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperrors.New(apperrors.BadRequest, name+" param must be a valid id")
	}
	return &id, nil
}

func hexIDs(hexes []string) ([]primitive.ObjectID, error) {
	if hexes == nil {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, apperrors.New(apperrors.BadRequest, "invalid id "+h)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
