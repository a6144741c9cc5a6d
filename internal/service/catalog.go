package service

import (
	"github.com/glp1rx/assessment-backend/pkg/model"
)

// Catalog is the static ordered GLP-1 questionnaire. Questions are grouped
// into five categories and asked sequentially in declaration order:
// personal, medical, lifestyle, medications, goals.
type Catalog struct {
	questions []model.Question
	byID      map[string]*model.Question
}

func floatPtr(f float64) *float64 { return &f }

// NewCatalog builds the GLP-1 eligibility questionnaire catalog
func NewCatalog() *Catalog {
	questions := []model.Question{
		// Personal information
		{
			ID:       "fullName",
			Prompt:   "What is your full name?",
			Type:     model.QuestionTypeText,
			Required: true,
			Category: model.CategoryPersonal,
		},
		{
			ID:       "age",
			Prompt:   "How old are you?",
			Type:     model.QuestionTypeNumber,
			Required: true,
			Unit:     "years",
			Validation: &model.Validation{
				Min:     floatPtr(18),
				Max:     floatPtr(120),
				Message: "You must be at least 18 years old to be eligible for GLP-1 treatment",
			},
			HelperText: "GLP-1 medications are approved for adults 18 years and older",
			Category:   model.CategoryPersonal,
		},
		{
			ID:       "gender",
			Prompt:   "What is your biological sex?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "male", Label: "Male"},
				{Value: "female", Label: "Female"},
				{Value: "other", Label: "Prefer not to say"},
			},
			HelperText: "This information helps us assess potential interactions and contraindications",
			Category:   model.CategoryPersonal,
		},
		{
			ID:         "pregnant",
			Prompt:     "Are you currently pregnant, planning to become pregnant, or breastfeeding?",
			Type:       model.QuestionTypeBoolean,
			Required:   true,
			HelperText: "GLP-1 medications are not recommended during pregnancy or breastfeeding",
			Category:   model.CategoryPersonal,
		},
		{
			ID:       "height",
			Prompt:   "What is your height?",
			Type:     model.QuestionTypeHeight,
			Required: true,
			Unit:     "cm",
			Validation: &model.Validation{
				Min:     floatPtr(100),
				Max:     floatPtr(250),
				Message: "Please enter a valid height between 100-250 cm",
			},
			HelperText: "Used to calculate your BMI (Body Mass Index)",
			Category:   model.CategoryPersonal,
		},
		{
			ID:       "weight",
			Prompt:   "What is your current weight?",
			Type:     model.QuestionTypeWeight,
			Required: true,
			Unit:     "kg",
			Validation: &model.Validation{
				Min:     floatPtr(30),
				Max:     floatPtr(300),
				Message: "Please enter a valid weight between 30-300 kg",
			},
			HelperText: "Your current weight helps determine eligibility and dosing",
			Category:   model.CategoryPersonal,
		},

		// Medical history and conditions
		{
			ID:       "diagnosedConditions",
			Prompt:   "Have you been diagnosed with any of the following conditions? (Select all that apply)",
			Type:     model.QuestionTypeMultiSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "type2Diabetes", Label: "Type 2 Diabetes"},
				{Value: "prediabetes", Label: "Prediabetes"},
				{Value: "obesity", Label: "Obesity"},
				{Value: "hypertension", Label: "High Blood Pressure (Hypertension)"},
				{Value: "highCholesterol", Label: "High Cholesterol"},
				{Value: "cardiovascular", Label: "Cardiovascular Disease"},
				{Value: "fatty_liver", Label: "Fatty Liver Disease (NAFLD)"},
				{Value: "pcos", Label: "PCOS (Polycystic Ovary Syndrome)"},
				{Value: "sleep_apnea", Label: "Sleep Apnea"},
				{Value: "none", Label: "None of the above"},
			},
			HelperText: "GLP-1 medications are approved for type 2 diabetes and obesity management",
			Category:   model.CategoryMedical,
		},
		{
			ID:       "diabetesType",
			Prompt:   "If you have diabetes, what type?",
			Type:     model.QuestionTypeSelect,
			Required: false,
			Options: []model.QuestionOption{
				{Value: "type1", Label: "Type 1 Diabetes"},
				{Value: "type2", Label: "Type 2 Diabetes"},
				{Value: "prediabetes", Label: "Prediabetes"},
				{Value: "gestational", Label: "Gestational Diabetes (past)"},
				{Value: "none", Label: "I do not have diabetes"},
			},
			HelperText: "GLP-1s are primarily for Type 2 Diabetes, not Type 1",
			Category:   model.CategoryMedical,
		},
		{
			ID:       "lastA1C",
			Prompt:   "What was your most recent HbA1c (A1C) level? (If known)",
			Type:     model.QuestionTypeNumber,
			Required: false,
			Unit:     "%",
			Validation: &model.Validation{
				Min:     floatPtr(4),
				Max:     floatPtr(15),
				Message: "Please enter a valid A1C between 4-15%",
			},
			HelperText: "A1C measures average blood sugar over 2-3 months. Normal is below 5.7%",
			Category:   model.CategoryMedical,
		},
		{
			ID:         "thyroidDisease",
			Prompt:     "Do you have any thyroid disease or family history of medullary thyroid cancer?",
			Type:       model.QuestionTypeBoolean,
			Required:   true,
			HelperText: "GLP-1 medications have contraindications for certain thyroid conditions",
			Category:   model.CategoryMedical,
		},
		{
			ID:         "pancreatitisHistory",
			Prompt:     "Have you ever had pancreatitis (inflammation of the pancreas)?",
			Type:       model.QuestionTypeBoolean,
			Required:   true,
			HelperText: "History of pancreatitis may be a contraindication for GLP-1 therapy",
			Category:   model.CategoryMedical,
		},
		{
			ID:       "kidneyDisease",
			Prompt:   "Do you have kidney disease or impaired kidney function?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "none", Label: "No kidney issues"},
				{Value: "mild", Label: "Mild kidney disease (Stage 1-2)"},
				{Value: "moderate", Label: "Moderate kidney disease (Stage 3)"},
				{Value: "severe", Label: "Severe kidney disease (Stage 4-5)"},
				{Value: "dialysis", Label: "On dialysis"},
				{Value: "unknown", Label: "Not sure / Not tested"},
			},
			HelperText: "Some GLP-1 medications require dose adjustment for kidney disease",
			Category:   model.CategoryMedical,
		},
		{
			ID:         "gastroparesis",
			Prompt:     "Have you been diagnosed with gastroparesis (delayed stomach emptying)?",
			Type:       model.QuestionTypeBoolean,
			Required:   true,
			HelperText: "GLP-1s slow gastric emptying, which may worsen gastroparesis",
			Category:   model.CategoryMedical,
		},
		{
			ID:         "allergies",
			Prompt:     "Do you have any known drug allergies or allergies to GLP-1 medications?",
			Type:       model.QuestionTypeText,
			Required:   false,
			HelperText: "List any medications you have had allergic reactions to",
			Category:   model.CategoryMedical,
		},

		// Lifestyle and habits
		{
			ID:       "weightLossAttempts",
			Prompt:   "Have you tried to lose weight before? If yes, what methods have you tried?",
			Type:     model.QuestionTypeMultiSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "diet", Label: "Diet changes"},
				{Value: "exercise", Label: "Exercise programs"},
				{Value: "counseling", Label: "Nutritional counseling"},
				{Value: "commercial", Label: "Commercial programs (Weight Watchers, etc.)"},
				{Value: "medications", Label: "Weight loss medications"},
				{Value: "surgery", Label: "Bariatric surgery"},
				{Value: "none", Label: "No previous attempts"},
			},
			HelperText: "Understanding your weight loss history helps personalize treatment",
			Category:   model.CategoryLifestyle,
		},
		{
			ID:       "exerciseFrequency",
			Prompt:   "How often do you currently exercise?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "none", Label: "No regular exercise"},
				{Value: "1-2", Label: "1-2 times per week"},
				{Value: "3-4", Label: "3-4 times per week"},
				{Value: "5+", Label: "5 or more times per week"},
				{Value: "daily", Label: "Daily"},
			},
			HelperText: "GLP-1 treatment works best combined with lifestyle modifications",
			Category:   model.CategoryLifestyle,
		},
		{
			ID:       "dietPattern",
			Prompt:   "Which best describes your current eating pattern?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "standard", Label: "Standard mixed diet"},
				{Value: "lowCarb", Label: "Low carb / Keto"},
				{Value: "mediterranean", Label: "Mediterranean diet"},
				{Value: "vegetarian", Label: "Vegetarian"},
				{Value: "vegan", Label: "Vegan"},
				{Value: "intermittent", Label: "Intermittent fasting"},
				{Value: "other", Label: "Other"},
			},
			Category: model.CategoryLifestyle,
		},
		{
			ID:       "smokingStatus",
			Prompt:   "Do you currently smoke or use tobacco products?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "never", Label: "Never smoked"},
				{Value: "former", Label: "Former smoker"},
				{Value: "current", Label: "Current smoker"},
				{Value: "vape", Label: "Vape/E-cigarettes only"},
			},
			Category: model.CategoryLifestyle,
		},
		{
			ID:       "alcoholUse",
			Prompt:   "How often do you consume alcohol?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "none", Label: "Never / Rarely"},
				{Value: "occasional", Label: "Occasionally (1-2 drinks per week)"},
				{Value: "moderate", Label: "Moderate (3-7 drinks per week)"},
				{Value: "heavy", Label: "Heavy (8+ drinks per week)"},
			},
			HelperText: "Alcohol can affect blood sugar and interact with diabetes medications",
			Category:   model.CategoryLifestyle,
		},

		// Current medications
		{
			ID:         "currentMedications",
			Prompt:     "Are you currently taking any medications? Please list all prescription and over-the-counter medications.",
			Type:       model.QuestionTypeText,
			Required:   true,
			HelperText: "Include vitamins, supplements, and herbal products",
			Category:   model.CategoryMedications,
		},
		{
			ID:       "diabetesMedications",
			Prompt:   "Are you currently taking any diabetes medications? (Select all that apply)",
			Type:     model.QuestionTypeMultiSelect,
			Required: false,
			Options: []model.QuestionOption{
				{Value: "metformin", Label: "Metformin"},
				{Value: "sulfonylureas", Label: "Sulfonylureas (Glipizide, Glyburide)"},
				{Value: "insulin", Label: "Insulin"},
				{Value: "glp1_current", Label: "GLP-1 agonist (Ozempic, Trulicity, etc.)"},
				{Value: "sglt2", Label: "SGLT2 inhibitor (Jardiance, Farxiga)"},
				{Value: "dpp4", Label: "DPP-4 inhibitor (Januvia, Tradjenta)"},
				{Value: "other", Label: "Other diabetes medication"},
				{Value: "none", Label: "None"},
			},
			HelperText: "Current diabetes medications may need adjustment when starting GLP-1",
			Category:   model.CategoryMedications,
		},
		{
			ID:       "insulinType",
			Prompt:   "If you take insulin, what type? (Select all that apply)",
			Type:     model.QuestionTypeMultiSelect,
			Required: false,
			Options: []model.QuestionOption{
				{Value: "basal", Label: "Basal/Long-acting (Lantus, Levemir, Tresiba)"},
				{Value: "bolus", Label: "Bolus/Rapid-acting (Humalog, Novolog)"},
				{Value: "premix", Label: "Pre-mixed insulin"},
				{Value: "pump", Label: "Insulin pump"},
				{Value: "none", Label: "I do not take insulin"},
			},
			Category: model.CategoryMedications,
		},
		{
			ID:       "bloodPressureMeds",
			Prompt:   "Are you taking blood pressure medications?",
			Type:     model.QuestionTypeBoolean,
			Required: true,
			Category: model.CategoryMedications,
		},
		{
			ID:       "cholesterolMeds",
			Prompt:   "Are you taking cholesterol medications (statins)?",
			Type:     model.QuestionTypeBoolean,
			Required: true,
			Category: model.CategoryMedications,
		},
		{
			ID:       "previousGLP1",
			Prompt:   "Have you previously taken any GLP-1 medications?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "never", Label: "Never taken GLP-1 medication"},
				{Value: "ozempic", Label: "Ozempic (Semaglutide weekly)"},
				{Value: "wegovy", Label: "Wegovy (Semaglutide weekly - weight loss)"},
				{Value: "trulicity", Label: "Trulicity (Dulaglutide)"},
				{Value: "victoza", Label: "Victoza (Liraglutide daily)"},
				{Value: "saxenda", Label: "Saxenda (Liraglutide daily - weight loss)"},
				{Value: "mounjaro", Label: "Mounjaro (Tirzepatide)"},
				{Value: "other", Label: "Other GLP-1 medication"},
			},
			HelperText: "Previous GLP-1 experience helps determine the best medication choice",
			Category:   model.CategoryMedications,
		},
		{
			ID:       "previousGLP1Response",
			Prompt:   "If you took a GLP-1 medication before, what was your experience?",
			Type:     model.QuestionTypeSelect,
			Required: false,
			Options: []model.QuestionOption{
				{Value: "effective", Label: "Effective - good results"},
				{Value: "sideEffects", Label: "Stopped due to side effects"},
				{Value: "noEffect", Label: "Did not see results"},
				{Value: "cost", Label: "Stopped due to cost"},
				{Value: "other", Label: "Other reason"},
			},
			Category: model.CategoryMedications,
		},

		// Treatment goals and expectations
		{
			ID:       "primaryGoal",
			Prompt:   "What is your primary goal for GLP-1 treatment?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "bloodSugar", Label: "Better blood sugar control"},
				{Value: "weightLoss", Label: "Weight loss"},
				{Value: "both", Label: "Both blood sugar control and weight loss"},
				{Value: "cardiovascular", Label: "Reduce cardiovascular risk"},
				{Value: "a1c", Label: "Lower A1C level"},
				{Value: "other", Label: "Other health goals"},
			},
			Category: model.CategoryGoals,
		},
		{
			ID:       "weightLossGoal",
			Prompt:   "How much weight would you like to lose?",
			Type:     model.QuestionTypeNumber,
			Required: false,
			Unit:     "kg",
			Validation: &model.Validation{
				Min:     floatPtr(1),
				Max:     floatPtr(100),
				Message: "Please enter a realistic weight loss goal",
			},
			HelperText: "Realistic goal: 5-15% of current body weight over 6-12 months",
			Category:   model.CategoryGoals,
		},
		{
			ID:       "timeline",
			Prompt:   "What is your preferred timeline for starting treatment?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "immediately", Label: "As soon as possible"},
				{Value: "within_month", Label: "Within 1 month"},
				{Value: "within_3months", Label: "Within 3 months"},
				{Value: "exploring", Label: "Just exploring options"},
			},
			Category: model.CategoryGoals,
		},
		{
			ID:       "injectionComfort",
			Prompt:   "How comfortable are you with self-injecting medication weekly?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "comfortable", Label: "Very comfortable - I already do injections"},
				{Value: "willing", Label: "Willing to learn"},
				{Value: "concerned", Label: "Somewhat concerned but willing to try"},
				{Value: "uncomfortable", Label: "Very uncomfortable with needles"},
			},
			HelperText: "Most GLP-1 medications are weekly injections with small needles",
			Category:   model.CategoryGoals,
		},
		{
			ID:       "costConcern",
			Prompt:   "Do you have insurance coverage for prescription medications?",
			Type:     model.QuestionTypeSelect,
			Required: true,
			Options: []model.QuestionOption{
				{Value: "full", Label: "Yes - full coverage"},
				{Value: "partial", Label: "Yes - partial coverage / high copay"},
				{Value: "none", Label: "No insurance coverage"},
				{Value: "unknown", Label: "Not sure about coverage"},
			},
			HelperText: "GLP-1 medications can be expensive without insurance coverage",
			Category:   model.CategoryGoals,
		},
		{
			ID:       "additionalInfo",
			Prompt:   "Is there anything else you would like us to know about your health or treatment goals?",
			Type:     model.QuestionTypeText,
			Required: false,
			Category: model.CategoryGoals,
		},
	}

	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	return &Catalog{
		questions: questions,
		byID:      byID,
	}
}

// Questions returns all questions in catalog order
func (c *Catalog) Questions() []model.Question {
	return c.questions
}

// QuestionByID returns a question by its id, or nil if unknown
func (c *Catalog) QuestionByID(id string) *model.Question {
	return c.byID[id]
}

// QuestionsByCategory returns the questions of one category in catalog order
func (c *Catalog) QuestionsByCategory(category model.QuestionCategory) []model.Question {
	var out []model.Question
	for _, q := range c.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// Categories returns the catalog's categories in asking order
func (c *Catalog) Categories() []model.QuestionCategory {
	return []model.QuestionCategory{
		model.CategoryPersonal,
		model.CategoryMedical,
		model.CategoryLifestyle,
		model.CategoryMedications,
		model.CategoryGoals,
	}
}

// NextQuestion returns the first question, in catalog order, that is
// required, unanswered and applicable under its conditional rule. It returns
// nil when every such question is satisfied.
func (c *Catalog) NextQuestion(answers model.AnswerSet) *model.Question {
	for i := range c.questions {
		q := &c.questions[i]

		if !c.Applicable(q.ID, answers) {
			continue
		}

		if q.Required {
			if _, answered := answers[q.ID]; !answered {
				return q
			}
		}
	}
	return nil
}

// Applicable reports whether a question should be asked given the current
// answers. Only four questions carry conditional rules; everything else is
// unconditionally applicable.
func (c *Catalog) Applicable(questionID string, answers model.AnswerSet) bool {
	switch questionID {
	case "diabetesType":
		conditions := stringSliceAnswer(answers, "diagnosedConditions")
		return containsString(conditions, "type2Diabetes") || containsString(conditions, "prediabetes")
	case "insulinType":
		meds := stringSliceAnswer(answers, "diabetesMedications")
		return containsString(meds, "insulin")
	case "previousGLP1Response":
		previous, ok := answers["previousGLP1"].(string)
		return ok && previous != "never"
	case "weightLossGoal":
		goal, ok := answers["primaryGoal"].(string)
		return ok && (goal == "weightLoss" || goal == "both")
	default:
		return true
	}
}

// stringSliceAnswer reads a multiselect answer, tolerating the []interface{}
// shape produced by JSON round-trips through the session store
func stringSliceAnswer(answers model.AnswerSet, id string) []string {
	switch v := answers[id].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
