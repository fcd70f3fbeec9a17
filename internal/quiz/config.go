package quiz

import (
	"time"

	"github.com/quizparty-games/quizparty/internal/database"
)

type Config struct {
	// Logging verbosity and encoder
	Debug bool `envconfig:"QUIZ_DEBUG" default:"false"`

	// Port on which health check and the websocket channel are served
	Port string `envconfig:"QUIZ_PORT" default:"8080"`

	// Port for the pprof debug server
	ProfPort string `envconfig:"QUIZ_PROF_PORT" default:"8081"`

	// Number of items in the results cache
	CacheSize int `envconfig:"QUIZ_CACHE_SIZE" default:"1024"`

	// Waiting time for a room to finish before it is suspended
	RoomTimeout time.Duration `envconfig:"QUIZ_ROOM_TIMEOUT" default:"6h"`

	// Prize places contested at the final leaderboard
	PrizePlaces int `envconfig:"QUIZ_PRIZE_PLACES" default:"1"`

	// Total points the restore extra may give back across a whole room
	RestorePointsCap int `envconfig:"QUIZ_RESTORE_POINTS_CAP" default:"10"`

	// Points returned by one use of the restore extra
	RestorePerUse int `envconfig:"QUIZ_RESTORE_PER_USE" default:"2"`

	// Points moved by the rob extra
	RobAmount int `envconfig:"QUIZ_ROB_AMOUNT" default:"2"`

	DB database.Config
}
