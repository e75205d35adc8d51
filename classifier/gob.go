package classifier

import "encoding/gob"

// Checkpoints persist the fitted classifier behind the model.Classifier
// interface, so every concrete type that can appear there must be registered.
// GridSearchCV is excluded: its estimator factory is a function value and
// cannot be gob encoded; checkpoint its refit Best instead.
func init() {
	gob.Register(&LinearDiscriminantAnalysis{})
	gob.Register(&RandomForestClassifier{})
	gob.Register(&LogisticRegression{})
}
