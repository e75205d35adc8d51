package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	// y は整数クラスコード（LabelEncoderの出力）
	Fit(X mat.Matrix, y []int) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対するクラスコードを予測する
	Predict(X mat.Matrix) ([]int, error)
}

// Scorer はスコア計算可能なモデルのインターフェース
type Scorer interface {
	// Score はテストデータに対する平均精度（accuracy）を計算する
	Score(X mat.Matrix, y []int) (float64, error)
}

// Classifier は分類器の基本契約 {Fit, Predict, Score} を表す。
// モデルカタログの全エントリはこのインターフェースを満たす。
// 継承は不要で、この単一のインターフェースのみが多態の単位となる。
type Classifier interface {
	Fitter
	Predictor
	Scorer
}

// ProbabilisticClassifier はクラス確率を出力できる分類器のインターフェース
type ProbabilisticClassifier interface {
	Classifier

	// PredictProba は各クラスの確率を予測する（n_samples × n_classes）
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes は学習されたクラスコードを返す
	Classes() []int
}
