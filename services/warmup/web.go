package warmup

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/cartbackend/lib/mycontext"
	"github.com/MarcGrol/cartbackend/lib/myerrors"
	"github.com/MarcGrol/cartbackend/lib/myhttp"
	"github.com/MarcGrol/cartbackend/lib/mylog"
)

//go:generate mockgen -source=web.go -package warmup -destination warmer_mock.go Warmer
type Warmer interface {
	Warmup(c context.Context) error
}

type webService struct {
	logger  mylog.Logger
	warmers []Warmer
}

// NewService answers the App Engine warmup request by preparing every given service before traffic arrives.
func NewService(warmers ...Warmer) *webService {
	return &webService{
		logger:  mylog.New("warmup"),
		warmers: warmers,
	}
}

func (s webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/_ah/warmup", s.warmupPage()).Methods("GET")
}

func (s *webService) warmupPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		for _, warmer := range s.warmers {
			err := warmer.Warmup(c)
			if err != nil {
				responseWriter.WriteError(c, w, 1, myerrors.NewUnavailableError(err))
				return
			}
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed warmup request",
		})
	}
}
