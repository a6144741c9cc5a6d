package assessment

// Wire types for the external GLP-1 assessment engine. The engine owns
// eligibility scoring, medication ranking and prescription generation; this
// service only forwards collected data and renders the responses.

// ConversationEntry is one turn of the transcript in the engine's wire shape
type ConversationEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// CollectedData is the engine's view of the patient's answers. Unknown keys
// are passed through untouched.
type CollectedData map[string]interface{}

// ChatRequest carries one user turn to the engine
type ChatRequest struct {
	Message             string              `json:"message"`
	ConversationHistory []ConversationEntry `json:"conversation_history"`
	CollectedData       CollectedData       `json:"collected_data"`
	SessionID           string              `json:"session_id,omitempty"`
}

// ChatResponse is the engine's reply to a chat turn
type ChatResponse struct {
	Response             string              `json:"response"`
	CollectedData        CollectedData       `json:"collected_data"`
	CompletionPercentage float64             `json:"completion_percentage"`
	IsComplete           bool                `json:"is_complete"`
	NextExpectedField    *string             `json:"next_expected_field,omitempty"`
	ConversationHistory  []ConversationEntry `json:"conversation_history"`
	MedicalFlags         []string            `json:"medical_flags"`
	SessionID            *string             `json:"session_id,omitempty"`
	ProcessingTime       float64             `json:"processing_time,omitempty"`
	ModelUsed            *string             `json:"model_used,omitempty"`
}

// StartConversationResponse is returned when a new engine session is opened
type StartConversationResponse struct {
	Response            string              `json:"response"`
	CollectedData       CollectedData       `json:"collected_data"`
	ConversationHistory []ConversationEntry `json:"conversation_history"`
	SessionID           string              `json:"session_id"`
	ProcessingTime      float64             `json:"processing_time"`
}

// CompleteRequest asks the engine for the final composite recommendation
type CompleteRequest struct {
	CollectedData CollectedData `json:"collected_data"`
	SessionID     string        `json:"session_id,omitempty"`
}

// BMIAssessment is the engine's BMI sub-score
type BMIAssessment struct {
	Value         float64 `json:"value"`
	Category      string  `json:"category"`
	MeetsCriteria bool    `json:"meets_criteria"`
	Score         float64 `json:"score"`
}

// DiabetesStatus is the engine's diabetes sub-score
type DiabetesStatus struct {
	HasType2Diabetes bool    `json:"has_type2_diabetes"`
	Controlled       *bool   `json:"controlled,omitempty"`
	Score            float64 `json:"score"`
}

// Comorbidities is the engine's comorbidity sub-score
type Comorbidities struct {
	Present            []string `json:"present"`
	CardiovascularRisk *string  `json:"cardiovascular_risk,omitempty"`
	Score              float64  `json:"score"`
}

// WeightLossGoal is the engine's goal-realism sub-score
type WeightLossGoal struct {
	Realistic bool    `json:"realistic"`
	Score     float64 `json:"score"`
}

// Contraindications lists hard disqualifiers found by the engine
type Contraindications struct {
	HasContraindications bool     `json:"has_contraindications"`
	Violations           []string `json:"violations"`
}

// ClinicalAssessment groups the engine's clinical sub-scores
type ClinicalAssessment struct {
	BMI               BMIAssessment     `json:"bmi"`
	DiabetesStatus    DiabetesStatus    `json:"diabetes_status"`
	Comorbidities     Comorbidities     `json:"comorbidities"`
	WeightLossGoal    WeightLossGoal    `json:"weight_loss_goal"`
	Contraindications Contraindications `json:"contraindications"`
}

// DecisionSupport carries the engine's clinical reasoning text
type DecisionSupport struct {
	Recommendation    string   `json:"recommendation"`
	ClinicalReasoning []string `json:"clinical_reasoning"`
	KeyConsiderations []string `json:"key_considerations,omitempty"`
}

// PhysicianReview flags whether and where a physician must review
type PhysicianReview struct {
	ReviewRequired bool     `json:"review_required"`
	ReviewLevel    *string  `json:"review_level,omitempty"`
	FocusAreas     []string `json:"focus_areas"`
}

// Constraint is one soft constraint with its status
type Constraint struct {
	Constraint     string  `json:"constraint"`
	Status         string  `json:"status"`
	ActionRequired *string `json:"action_required,omitempty"`
}

// Constraints groups hard/soft constraint results
type Constraints struct {
	HardConstraintsPassed bool         `json:"hard_constraints_passed"`
	SoftConstraints       []Constraint `json:"soft_constraints"`
}

// EligibilityResponse is the engine's authoritative eligibility assessment
type EligibilityResponse struct {
	Success            bool               `json:"success"`
	Timestamp          string             `json:"timestamp"`
	SessionID          *string            `json:"session_id,omitempty"`
	EligibilityStatus  string             `json:"eligibility_status"`
	EligibilityScore   float64            `json:"eligibility_score"`
	RiskLevel          string             `json:"risk_level"`
	ClinicalAssessment ClinicalAssessment `json:"clinical_assessment"`
	DecisionSupport    DecisionSupport    `json:"decision_support"`
	PhysicianReview    PhysicianReview    `json:"physician_review"`
	Constraints        Constraints        `json:"constraints"`
	ProcessingTime     float64            `json:"processing_time"`
	EngineVersion      string             `json:"engine_version"`
}

// MedicationScore is the engine's per-medication ranking entry
type MedicationScore struct {
	Rank             int      `json:"rank"`
	Medication       string   `json:"medication"`
	TotalScore       float64  `json:"total_score"`
	EfficacyScore    float64  `json:"efficacy_score"`
	SafetyScore      float64  `json:"safety_score"`
	ConvenienceScore float64  `json:"convenience_score"`
	CostScore        float64  `json:"cost_score"`
	SuitabilityScore float64  `json:"suitability_score"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Rationale        string   `json:"rationale"`
}

// TitrationStep is one step of a dose titration schedule
type TitrationStep struct {
	Weeks string `json:"weeks"`
	Dose  string `json:"dose"`
}

// FollowUpVisit is one scheduled monitoring visit
type FollowUpVisit struct {
	Timepoint string   `json:"timepoint"`
	Purpose   string   `json:"purpose"`
	Tests     []string `json:"tests"`
}

// SideEffect describes an expected common side effect
type SideEffect struct {
	Symptom    string `json:"symptom"`
	Onset      string `json:"onset"`
	Severity   string `json:"severity"`
	Management string `json:"management"`
}

// SeriousSideEffect describes a symptom requiring escalation
type SeriousSideEffect struct {
	Symptom   string `json:"symptom"`
	Indicates string `json:"indicates"`
	Action    string `json:"action"`
}

// DrugInteraction describes a known interaction with another drug
type DrugInteraction struct {
	Drug           string `json:"drug"`
	Interaction    string `json:"interaction"`
	Recommendation string `json:"recommendation"`
}

// Prescription is the engine's structured prescription proposal
type Prescription struct {
	PatientName             string              `json:"patient_name"`
	Date                    string              `json:"date"`
	MedicationName          string              `json:"medication_name"`
	StartingDose            string              `json:"starting_dose"`
	TargetDose              string              `json:"target_dose"`
	TitrationSchedule       []TitrationStep     `json:"titration_schedule"`
	Route                   string              `json:"route"`
	Frequency               string              `json:"frequency"`
	Indication              string              `json:"indication"`
	DosingInstructions      string              `json:"dosing_instructions"`
	AdministrationTechnique []string            `json:"administration_technique"`
	BaselineLabs            []string            `json:"baseline_labs"`
	FollowUpVisits          []FollowUpVisit     `json:"follow_up_visits"`
	MonitoringParameters    []string            `json:"monitoring_parameters"`
	CommonSideEffects       []SideEffect        `json:"common_side_effects"`
	SeriousSideEffects      []SeriousSideEffect `json:"serious_side_effects"`
	DrugInteractions        []DrugInteraction   `json:"drug_interactions"`
	LifestyleModifications  []string            `json:"lifestyle_modifications"`
	DietaryRecommendations  []string            `json:"dietary_recommendations"`
	WhenToContactPhysician  []string            `json:"when_to_contact_physician"`
}

// CompleteRecommendationResponse is the engine's final composite result
type CompleteRecommendationResponse struct {
	Success                 bool                `json:"success"`
	Timestamp               string              `json:"timestamp"`
	SessionID               *string             `json:"session_id,omitempty"`
	ProcessingTime          float64             `json:"processing_time"`
	Eligibility             EligibilityResponse `json:"eligibility"`
	RecommendedMedication   *MedicationScore    `json:"recommended_medication,omitempty"`
	AlternativeMedications  []MedicationScore   `json:"alternative_medications"`
	Prescription            *Prescription       `json:"prescription,omitempty"`
	NextSteps               []string            `json:"next_steps"`
	PhysicianReviewRequired bool                `json:"physician_review_required"`
}
