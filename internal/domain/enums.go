package domain

// Sentiment is the post-workout feedback rating.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// SenderType identifies who authored a chat message.
type SenderType string

const (
	SenderUser  SenderType = "USER"
	SenderCoach SenderType = "REPPY" // the AI coach
)

// UnitSystem is the user's preferred measurement system.
type UnitSystem string

const (
	UnitCmKg UnitSystem = "CM_KG"
	UnitInLb UnitSystem = "IN_LB"
)

// Experience is the self-reported training level used for program generation.
type Experience string

const (
	ExperienceBeginner     Experience = "BEGINNER"
	ExperienceIntermediate Experience = "INTERMEDIATE"
	ExperienceProfessional Experience = "PROFESSIONAL"
)
